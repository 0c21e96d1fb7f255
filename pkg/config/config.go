package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host        string `json:"host"`        // The domain name of the server.
	ServerAddr  string `json:"serverAddr"`  // The address the server endpoint binds to.
	MetricsAddr string `json:"metricsAddr"` // The address the metric endpoint binds to.

	Auth struct {
		SessionSecret     string `json:"sessionSecret"`
		SessionExpiryHour int    `json:"sessionExpiryHour"` // session cookie lifetime, default 24
	} `json:"auth"`

	Postgres struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		DBName   string `json:"dbname"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslmode"`
		TimeZone string `json:"TimeZone"`
	} `json:"postgres"`

	Storage struct {
		UploadDir string `json:"uploadDir"` // Directory holding uploaded attachments and logos.
	} `json:"storage"`

	Chatbot struct {
		Enable       bool   `json:"enable"`
		ReminderSpec string `json:"reminderSpec"` // cron spec for the due-task reminder job
	} `json:"chatbot"`

	SMTP struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"smtp"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file. In debug mode the path can
// be overridden with PLANLANE_DEBUG_CONFIG_PATH; otherwise the file is
// read from the deployment location.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("PLANLANE_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("PLANLANE_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	err := readConfig(configPath, config)
	if err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	applyDefaults(config)
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func applyDefaults(config *Config) {
	if config.ServerAddr == "" {
		config.ServerAddr = ":8088"
	}
	if config.Auth.SessionExpiryHour == 0 {
		config.Auth.SessionExpiryHour = 24
	}
	if config.Storage.UploadDir == "" {
		config.Storage.UploadDir = "./uploads"
	}
	if config.Chatbot.ReminderSpec == "" {
		config.Chatbot.ReminderSpec = "0 8 * * *"
	}
}
