package pages

import (
	"encoding/json"

	"github.com/a-h/templ"

	"hexquiz/internal/viewmodel"
)

func sessionAttrs(data viewmodel.SessionPage) templ.Attributes {
	preload, _ := json.Marshal(data.Loader.URLs)
	return templ.Attributes{
		"data-session": data.SessionID,
		"data-share":   data.ShareURL,
		"data-preload": string(preload),
	}
}
