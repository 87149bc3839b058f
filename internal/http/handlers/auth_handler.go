package handlers

import (
	"hrauth/internal/log"
	"hrauth/internal/services"
	"hrauth/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, "auth.login", "Invalid request body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return invalid(c, "auth.login", "A valid email is required")
	}

	p, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if err != nil {
		return respondError(c, "auth.login", err, map[string]any{"email": email})
	}

	log.Info(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"message": "Login successful", "user": p})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, "auth.register", "Invalid request body")
	}
	in, msg := checkRegister(req)
	if msg != "" {
		return invalid(c, "auth.register", msg)
	}

	id, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, "auth.register", err, map[string]any{"email": in.Email})
	}

	log.Info(c, "auth.register.success", map[string]any{"email": in.Email, "user_id": id})
	return c.JSON(fiber.Map{"message": "User registered", "user_id": id})
}

// checkRegister trims the text fields and returns a user-facing message for
// the first invalid one. The password is passed through untouched.
func checkRegister(req services.RegisterInput) (services.RegisterInput, string) {
	var ok bool
	if req.Email, ok = validate.Email(req.Email); !ok {
		return req, "A valid email is required"
	}
	if !validate.Password(req.Password) {
		return req, "Password must be between 1 and 72 bytes"
	}
	for _, f := range []struct {
		name string
		val  *string
	}{{"name", &req.Name}, {"role", &req.Role}, {"department", &req.Department}} {
		if *f.val, ok = validate.Text(*f.val); !ok {
			return req, "Field " + f.name + " is required"
		}
	}
	return req, ""
}
