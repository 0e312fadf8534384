package exercise

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Section struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

type Sections []Section

func (s Sections) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Sections) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Sections", value)
	}

	return json.Unmarshal(bytes, s)
}

// Exercise is a routine users can be compared against. ReferenceVideo points
// at the recording of a correct performance.
type Exercise struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Slug           string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name           string    `gorm:"not null" json:"name"`
	Sections       Sections  `gorm:"type:text" json:"sections"`
	ReferenceVideo string    `gorm:"not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
