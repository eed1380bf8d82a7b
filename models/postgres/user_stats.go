package postgres

/*
 * 'UserStats' holds the credit balance and lifetime aggregates for one
 * user. Created lazily (500 starting credits) the first time the shop or
 * records endpoints need it.
 */
type UserStats struct {
	UserID        uint `gorm:"primaryKey" json:"user_id"`
	Credits       int  `gorm:"default:500" json:"credits"`
	TotalPoints   int  `gorm:"default:0" json:"total_points"`
	TotalKills    int  `gorm:"default:0" json:"total_kills"`
	TotalDeaths   int  `gorm:"default:0" json:"total_deaths"`
	MatchesPlayed int  `gorm:"default:0" json:"matches_played"`
	TotalPlaytime int  `gorm:"default:0" json:"total_playtime"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
