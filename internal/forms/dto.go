package forms

import (
	"time"

	"github.com/gin-gonic/gin"
)

type saveRequest struct {
	UserEmail string         `json:"user_email"`
	Email     string         `json:"email"`
	UserID    string         `json:"user_id"`
	FormData  map[string]any `json:"form_data"`
	Data      map[string]any `json:"data"`
	Completed bool           `json:"completed"`
	Qualified bool           `json:"qualified"`
}

func (r saveRequest) identifier() string {
	for _, v := range []string{r.UserEmail, r.Email, r.UserID} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r saveRequest) payload() map[string]any {
	if r.FormData != nil {
		return r.FormData
	}
	return r.Data
}

// toResponse renders the record the way the accepting table stores it: the
// identifier and payload keys follow the layout's column names.
func toResponse(rec Record) gin.H {
	idKey, payloadKey := "user_email", "form_data"
	if l, ok := LayoutByName(rec.Layout); ok {
		idKey, payloadKey = l.IdentifierColumn, l.PayloadColumn
	}
	return gin.H{
		"id":         rec.ID,
		idKey:        rec.Identifier,
		payloadKey:   rec.FormData,
		"completed":  rec.Completed,
		"qualified":  rec.Qualified,
		"created_at": rec.CreatedAt.Format(time.RFC3339),
		"updated_at": rec.UpdatedAt.Format(time.RFC3339),
		"table":      rec.Table,
	}
}
