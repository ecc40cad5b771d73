package schema

// Movie represents the movies table - one row per source record
type Movie struct {
	// MovieID is the record id from the movies file
	MovieID int64 `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	// Title is the title with the release year stripped
	Title string `gorm:"column:title;not null;type:text"`
	// ReleaseYear is parsed from the title suffix
	ReleaseYear *int `gorm:"column:release_year;type:integer"`
	// ImdbID is the external identifier from the metadata service
	ImdbID   *string `gorm:"column:imdb_id;type:text"`
	Director *string `gorm:"column:director;type:text"`
	Plot     *string `gorm:"column:plot;type:text"`
	// BoxOffice is kept as the service formats it, e.g. "$223,225,679"
	BoxOffice *string `gorm:"column:box_office;type:text"`
}

// TableName specifies the table name for the Movie model
func (Movie) TableName() string {
	return "movies"
}
