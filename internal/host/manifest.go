// Package host integrates the game with the client shell that embeds it:
// the one-shot ready handshake and the manifest and webhook endpoints the
// shell discovers it through.
package host

import (
	"encoding/json"
	"strings"

	"github.com/vovakirdan/base-tetris/internal/config"
)

// Manifest is the document served at /.well-known/farcaster.json.
type Manifest struct {
	AccountAssociation AccountAssociation `json:"accountAssociation"`
	Miniapp            Miniapp            `json:"miniapp"`
}

// AccountAssociation is the signed proof tying the manifest to its domain.
type AccountAssociation struct {
	Header    string `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Miniapp describes the app to the shell.
type Miniapp struct {
	Version               string   `json:"version"`
	Name                  string   `json:"name"`
	Subtitle              string   `json:"subtitle"`
	Description           string   `json:"description"`
	HomeURL               string   `json:"homeUrl"`
	IconURL               string   `json:"iconUrl"`
	SplashImageURL        string   `json:"splashImageUrl"`
	SplashBackgroundColor string   `json:"splashBackgroundColor"`
	WebhookURL            string   `json:"webhookUrl"`
	ScreenshotURLs        []string `json:"screenshotUrls"`
	PrimaryCategory       string   `json:"primaryCategory"`
	Tags                  []string `json:"tags"`
	HeroImageURL          string   `json:"heroImageUrl"`
	Tagline               string   `json:"tagline"`
	OGTitle               string   `json:"ogTitle"`
	OGDescription         string   `json:"ogDescription"`
	OGImageURL            string   `json:"ogImageUrl"`
	NoIndex               bool     `json:"noindex"`
}

// WebhookPath is where the shell posts events.
const WebhookPath = "/api/webhook"

// ManifestPath is where the shell looks for the manifest.
const ManifestPath = "/.well-known/farcaster.json"

// BuildManifest derives the manifest from cfg. Asset URLs hang off RootURL.
func BuildManifest(cfg config.HostConfig) Manifest {
	root := strings.TrimRight(cfg.RootURL, "/")
	app := cfg.Miniapp

	tags := app.Tags
	if tags == nil {
		tags = []string{}
	}

	return Manifest{
		AccountAssociation: AccountAssociation{
			Header:    cfg.AccountAssociation.Header,
			Payload:   cfg.AccountAssociation.Payload,
			Signature: cfg.AccountAssociation.Signature,
		},
		Miniapp: Miniapp{
			Version:               app.Version,
			Name:                  app.Name,
			Subtitle:              app.Subtitle,
			Description:           app.Description,
			HomeURL:               root,
			IconURL:               root + "/icon.png",
			SplashImageURL:        root + "/splash.png",
			SplashBackgroundColor: app.SplashBackgroundColor,
			WebhookURL:            root + WebhookPath,
			ScreenshotURLs:        []string{root + "/screenshot1.png"},
			PrimaryCategory:       app.PrimaryCategory,
			Tags:                  tags,
			HeroImageURL:          root + "/hero.png",
			Tagline:               app.Tagline,
			OGTitle:               app.OGTitle,
			OGDescription:         app.OGDescription,
			OGImageURL:            root + "/og-image.png",
			NoIndex:               app.NoIndex,
		},
	}
}

// JSON encodes m indented, with a trailing newline.
func (m Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
