package console

import (
	"net/http"

	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
)

// Preferences overrides de preferencias que el SPA aplica al arrancar.
type Preferences struct {
	App       AppPreferences       `json:"app"`
	Copyright CopyrightPreferences `json:"copyright"`
}

type AppPreferences struct {
	Name               string `json:"name"`
	AccessMode         string `json:"accessMode"`
	EnableRefreshToken bool   `json:"enableRefreshToken"`
}

// CopyrightPreferences pie de página. Sin companyName el footer va deshabilitado.
type CopyrightPreferences struct {
	Enable          bool   `json:"enable"`
	CompanyName     string `json:"companyName,omitempty"`
	CompanySiteLink string `json:"companySiteLink,omitempty"`
}

type PreferencesController struct {
	prefs Preferences
}

func NewPreferencesController(d Deps) *PreferencesController {
	return &PreferencesController{prefs: Preferences{
		App: AppPreferences{
			Name:               d.AppName,
			AccessMode:         "backend",
			EnableRefreshToken: d.EnableRefreshToken,
		},
		Copyright: CopyrightPreferences{
			Enable:          d.CompanyName != "",
			CompanyName:     d.CompanyName,
			CompanySiteLink: d.CompanySite,
		},
	}}
}

// Get maneja GET /api/preferences
func (c *PreferencesController) Get(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.prefs)
}
