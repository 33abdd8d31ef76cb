package models

import "time"

type Student struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	ClassName    string    `json:"class_name"`
	RegisteredBy int64     `json:"registered_by"`
	FullName     string    `json:"full_name"`
	DateOfBirth  time.Time `json:"dob"`
	CCCDNumber   string    `json:"cccd_number"`
	PhoneNumber  string    `json:"phone_number"`
	CCCDFront    *string   `json:"cccd_front,omitempty"`
	CCCDBack     *string   `json:"cccd_back,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ImagePaths lists the stored ID-card images of the student.
func (s *Student) ImagePaths() []string {
	var paths []string
	if s.CCCDFront != nil && *s.CCCDFront != "" {
		paths = append(paths, *s.CCCDFront)
	}
	if s.CCCDBack != nil && *s.CCCDBack != "" {
		paths = append(paths, *s.CCCDBack)
	}
	return paths
}
