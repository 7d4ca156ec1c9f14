package config

import (
	"encoding/json"
	"io/ioutil"
	stdtime "time"

	"github.com/ferux/pushcenter/internal/time"
)

// Application settings.
type Application struct {
	Debug          bool           `json:"debug"`
	DataFile       string         `json:"data_file"`
	Relay          Relay          `json:"relay"`
	Reachability   Reachability   `json:"reachability"`
	SweepInterval  time.Duration  `json:"sweep_interval"`
	MessageGroups  []string       `json:"message_groups"`
	SentryDSN      string         `json:"sentry_dsn"`
	NotifyTelegram NotifyTelegram `json:"notify_telegram"`
}

// Relay is the push relay endpoint.
type Relay struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// Reachability is a periodic check of the relay base url used by watch mode.
type Reachability struct {
	Interval time.Duration `json:"interval"`
}

// NotifyTelegram is an operator chat that receives failure summaries.
type NotifyTelegram struct {
	API      string `json:"api"`
	ChatID   string `json:"chat_id"`
	Endpoint string `json:"endpoint"`
}

// Default returns settings used when there is no config file.
func Default() Application {
	return Application{
		DataFile: "pushcenter.db",
		Relay: Relay{
			BaseURL: "https://api.day.app",
			Timeout: time.Duration(stdtime.Second * 10),
		},
		Reachability:  Reachability{Interval: time.Duration(stdtime.Second * 30)},
		SweepInterval: time.Duration(stdtime.Hour * 24),
	}
}

// Parse parses config from file. Missing values are taken from Default.
func Parse(path string) (Application, error) {
	fileBytes, err := ioutil.ReadFile(path)
	if err != nil {
		return Application{}, err
	}

	app := Default()
	err = json.Unmarshal(fileBytes, &app)

	return app, err
}
