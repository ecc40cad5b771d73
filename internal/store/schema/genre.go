package schema

// Genre represents the genres table - the deduplicated tag set
type Genre struct {
	// GenreID is the surrogate key assigned by the database
	GenreID int64 `gorm:"column:genre_id;primaryKey;autoIncrement"`
	// GenreName is the natural key
	GenreName string `gorm:"column:genre_name;not null;uniqueIndex;type:text"`
}

// TableName specifies the table name for the Genre model
func (Genre) TableName() string {
	return "genres"
}

// MovieGenre represents the movie_genres association table
type MovieGenre struct {
	MovieID int64 `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	GenreID int64 `gorm:"column:genre_id;primaryKey;autoIncrement:false"`
}

// TableName specifies the table name for the MovieGenre model
func (MovieGenre) TableName() string {
	return "movie_genres"
}
