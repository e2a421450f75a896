package models

import "io"

type Service struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	ShowHome         bool   `json:"show_home"`
	Icon             string `json:"icon"`
}

// Upload is a file received from the dashboard.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type NewService struct {
	Name             string  `form:"name" binding:"required,min=5"`
	Description      string  `form:"description" binding:"required,min=10"`
	ShortDescription string  `form:"short_description"`
	ShowHome         bool    `form:"show_home"`
	Icon             *Upload `form:"-" binding:"required"`
}

// ServicePatch replaces the editable service fields. A nil Icon preserves the
// current icon.
type ServicePatch struct {
	Name             string  `form:"name" binding:"required,min=5"`
	Description      string  `form:"description" binding:"required,min=10"`
	ShortDescription string  `form:"short_description"`
	ShowHome         bool    `form:"show_home"`
	Icon             *Upload `form:"-"`
}

type Plan struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type PlanInput struct {
	Name        string  `json:"name" binding:"required,min=5"`
	Description string  `json:"description" binding:"required,min=10"`
	Price       float64 `json:"price" binding:"required,gte=1"`
}

// ContactID is the id of the single contact row.
const ContactID = 1

type Contact struct {
	ID      int64  `json:"id"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// ContactPatch is a partial contact update; nil fields are left untouched.
type ContactPatch struct {
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty" binding:"omitempty,email"`
	Address *string `json:"address,omitempty"`
}

func (p ContactPatch) Empty() bool {
	return p.Phone == nil && p.Email == nil && p.Address == nil
}
