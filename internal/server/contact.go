package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"synapse-assistant/internal/contact"
)

// handleContact accepts the contact form as JSON or as a regular form post.
// JSON callers get the mailto URI back; form posts are redirected to it.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	asJSON := isJSON(r)
	if asJSON {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		form = contact.Form{
			Name:    r.PostForm.Get("name"),
			Email:   r.PostForm.Get("email"),
			Phone:   r.PostForm.Get("phone"),
			Service: r.PostForm.Get("service"),
			Message: r.PostForm.Get("message"),
		}
	}

	if msg := validateForm(form); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	h := contact.NewHandoff(s.recipient, form)
	s.log.Info("contact handoff attempted",
		zap.String("name", form.Name),
		zap.String("service", form.Service),
		zap.Bool("json", asJSON),
	)
	if !asJSON {
		http.Redirect(w, r, h.Mailto, http.StatusSeeOther)
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

// validateForm enforces the required fields the form surface marks as such.
func validateForm(f contact.Form) string {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(f.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return "missing required fields: " + strings.Join(missing, ", ")
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return "email is not a valid address"
	}
	return ""
}

func isJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}
