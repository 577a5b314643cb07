package person

import "strings"

type Person struct {
	ID        int64  `json:"id" db:"id" gorm:"primaryKey"`
	FirstName string `json:"firstName" db:"first_name" gorm:"column:first_name;size:80;not null"`
	LastName  string `json:"lastName" db:"last_name" gorm:"column:last_name;size:80;not null"`
	Email     string `json:"email" db:"email" gorm:"column:email;size:80;not null;uniqueIndex"`
	Address   string `json:"address" db:"address" gorm:"column:address;size:100;not null"`
	Gender    string `json:"gender" db:"gender" gorm:"column:gender;size:6;not null"`
}

// TableName keeps GORM on the same table the SQL repository uses.
func (Person) TableName() string {
	return "person"
}

// IsMissingRequiredFields reports whether any attribute is blank.
func (p Person) IsMissingRequiredFields() bool {
	for _, v := range []string{p.FirstName, p.LastName, p.Email, p.Address, p.Gender} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
