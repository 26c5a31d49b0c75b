package cmd

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"

	"github.com/plumeapp/plume-go/support/activity"
	"github.com/plumeapp/plume-go/support/logger"
	"github.com/plumeapp/plume-go/support/reporting"
	"github.com/plumeapp/plume-go/support/sdk"
	"github.com/plumeapp/plume-go/support/utils"
)

// clientConfig is the toml config for commands that talk to the Plume backend
type clientConfig struct {
	APIURL         string            `toml:"API_URL"`
	Email          string            `toml:"EMAIL"`
	Password       string            `toml:"PASSWORD"`
	KeyID          string            `toml:"KEY_ID"`
	SigningKey     string            `toml:"SIGNING_KEY"`
	TimeoutSeconds int               `toml:"TIMEOUT_SECONDS"`
	Headers        map[string]string `toml:"HEADERS"`
	AlertType      string            `toml:"ALERT_TYPE"`
	AlertAPIKey    string            `toml:"ALERT_API_KEY"`
}

// String impl
func (c clientConfig) String() string {
	return utils.StructString(c, 0, map[string]func(interface{}) interface{}{
		"PASSWORD":      utils.MaskSecret,
		"SIGNING_KEY":   utils.Hide,
		"ALERT_API_KEY": utils.Hide,
	})
}

// usesKeyAuth is true when the config carries a signing key pair instead of user credentials
func (c clientConfig) usesKeyAuth() bool {
	return c.KeyID != "" && c.SigningKey != ""
}

func (c clientConfig) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func readClientConfig(filename string) clientConfig {
	var cfg clientConfig
	_, e := toml.DecodeFile(filename, &cfg)
	utils.CheckConfigError(cfg, e, filename)
	utils.LogConfig(cfg)

	if !cfg.usesKeyAuth() && (cfg.Email == "" || cfg.Password == "") {
		log.Fatalf("error: the config file '%s' needs either EMAIL and PASSWORD, or KEY_ID and SIGNING_KEY, to authenticate against the Plume backend\n", filename)
	}
	return cfg
}

// makePlume builds an SDK instance from the config with the reporting and
// activity collaborators attached, logged in and ready for API calls
func makePlume(l logger.Logger, cfg clientConfig) (*sdk.Plume, *reporting.Reporter) {
	checkInitRootFlags()
	if *rootAPIURL == "" && cfg.APIURL != "" {
		e := sdk.SetBaseURL(cfg.APIURL)
		if e != nil {
			logger.Fatal(l, fmt.Errorf("unable to set backend URL to '%s': %s", cfg.APIURL, e))
		}
	}
	l.Infof("using backend URL: %s\n", sdk.GetBaseURL())

	deviceID, e := machineid.ID()
	if e != nil {
		logger.Fatal(l, fmt.Errorf("could not generate machine id: %s", e))
	}

	p, e := sdk.MakePlume(version, deviceID, cfg.timeout(), l)
	if e != nil {
		logger.Fatal(l, fmt.Errorf("could not make the Plume SDK instance: %s", e))
	}

	e = sdk.InstallConfiguredHeaders(p.Client(), cfg.Headers)
	if e != nil {
		logger.Fatal(l, fmt.Errorf("could not install configured headers: %s", e))
	}

	reporter := reporting.MakeReporter(version, runtime.GOOS, l)
	alert, e := reporting.MakeAlert(cfg.AlertType, cfg.AlertAPIKey)
	if e != nil {
		l.Infof("unable to set up alerting for alert type '%s' with the given API key\n", cfg.AlertType)
	} else {
		reporter.SetAlert(alert)
	}
	p.Client().SetReporter(reporter)
	p.Client().SetActivityTracker(activity.MakeTracker(func(visible bool) {
		if visible {
			l.Info("network activity started")
		} else {
			l.Info("network activity stopped")
		}
	}))

	e = reporter.SendStartupEvent()
	if e != nil {
		l.Infof("could not send startup event: %s\n", e)
	}

	if cfg.usesKeyAuth() {
		auth, e := sdk.MakeKeyAuthenticator(cfg.KeyID, cfg.SigningKey)
		if e != nil {
			logger.Fatal(l, fmt.Errorf("could not make the key authenticator: %s", e))
		}
		p.Client().SetAuthenticator(auth)
		return p, reporter
	}

	_, e = p.Login(nil, cfg.Email, cfg.Password)
	if e != nil {
		logger.Fatal(l, fmt.Errorf("could not log in to the Plume backend: %s", e))
	}

	return p, reporter
}
