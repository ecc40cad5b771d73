package schema

// Rating represents the ratings table
type Rating struct {
	UserID  int64   `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	MovieID int64   `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	Rating  float64 `gorm:"column:rating;not null"`
	// ObservedAt is the rating time as unix seconds
	ObservedAt int64 `gorm:"column:observed_at;primaryKey;autoIncrement:false"`
}

// TableName specifies the table name for the Rating model
func (Rating) TableName() string {
	return "ratings"
}
