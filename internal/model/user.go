package model

type ExperienceLevel string

const (
	Beginner     ExperienceLevel = "Beginner"
	Intermediate ExperienceLevel = "Intermediate"
	Expert       ExperienceLevel = "Expert"
)

var ExperienceLevels = []ExperienceLevel{Beginner, Intermediate, Expert}

func (l ExperienceLevel) Valid() bool {
	switch l {
	case Beginner, Intermediate, Expert:
		return true
	}
	return false
}

// User 是浏览器端持久化的会话快照
type User struct {
	StudentID       int             `json:"student_id" validate:"required,gt=0"`
	Name            string          `json:"name" validate:"max=200"`
	Email           string          `json:"email" validate:"required,email"`
	Skills          []string        `json:"skills" validate:"omitempty,dive,required"`
	Interests       []string        `json:"interests" validate:"omitempty,dive,required"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty" validate:"omitempty,oneof=Beginner Intermediate Expert"`
	IsOnboarded     bool            `json:"isOnboarded"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Skills != nil {
		c.Skills = append([]string(nil), u.Skills...)
	}
	if u.Interests != nil {
		c.Interests = append([]string(nil), u.Interests...)
	}
	return &c
}
