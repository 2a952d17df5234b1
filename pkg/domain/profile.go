package domain

import "time"

// Profile is the user's public record plus the onboarding fields kept in user metadata.
type Profile struct {
	ID               string          `json:"id"`
	Username         string          `json:"username"`
	FullName         string          `json:"full_name"`
	Email            string          `json:"email,omitempty"`
	AvatarURL        string          `json:"avatar_url,omitempty"`
	Bio              string          `json:"bio,omitempty"`
	Location         string          `json:"location,omitempty"`
	Website          string          `json:"website,omitempty"`
	University       string          `json:"university,omitempty"`
	Course           string          `json:"course,omitempty"`
	YearOfJoining    string          `json:"year_of_joining,omitempty"`
	CareerGoal       string          `json:"career_goal,omitempty"`
	ExperienceLevel  ExperienceLevel `json:"experience_level,omitempty"`
	PreferredDomains []string        `json:"preferred_domains,omitempty"`
	Onboarded        bool            `json:"onboarded"`
	UpdatedAt        time.Time       `json:"updated_at,omitempty"`
}

// ProfileUpdate is a partial update. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName         *string          `json:"full_name,omitempty"`
	CareerGoal       *string          `json:"career_goal,omitempty"`
	ExperienceLevel  *ExperienceLevel `json:"experience_level,omitempty"`
	PreferredDomains []string         `json:"preferred_domains,omitempty"`
	Onboarded        *bool            `json:"onboarded,omitempty"`
}

// Apply merges u into p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.CareerGoal != nil {
		p.CareerGoal = *u.CareerGoal
	}
	if u.ExperienceLevel != nil {
		p.ExperienceLevel = *u.ExperienceLevel
	}
	if u.PreferredDomains != nil {
		p.PreferredDomains = append([]string(nil), u.PreferredDomains...)
	}
	if u.Onboarded != nil {
		p.Onboarded = *u.Onboarded
	}
}

// PublicProfile aggregates everything shown on /in/{username}.
type PublicProfile struct {
	Profile        Profile         `json:"profile"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	Skills         []Skill         `json:"skills"`
}
