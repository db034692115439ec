package echoapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const flashCookie = "flash"

// flash categories
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashDanger  = "danger"
)

// flash is a one-shot notice shown by the next view.
type flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func setFlash(ctx echo.Context, category, message string) {
	data, err := json.Marshal(flash{Category: category, Message: message})
	if err != nil {
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and clears it.
func popFlash(ctx echo.Context) *flash {
	c, err := ctx.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	f := new(flash)
	if err = json.Unmarshal(data, f); err != nil {
		return nil
	}
	return f
}

// redirectWithFlash ends a successful form submission.
func redirectWithFlash(ctx echo.Context, location, category, message string) error {
	setFlash(ctx, category, message)
	return ctx.Redirect(http.StatusSeeOther, location)
}

// render sends the view data of a page, with the pending notice.
func render(ctx echo.Context, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	if f := popFlash(ctx); f != nil {
		data["flash"] = f
	}
	return ctx.JSON(http.StatusOK, data)
}
