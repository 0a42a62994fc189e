package temporalx

import (
	"time"

	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/utils"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	// CronSchedule drives the maintenance workflow. Jobs gate on each user's
	// local hour, so the schedule runs hourly.
	CronSchedule          string
	AutoRegisterNamespace bool
	RetentionDays         int

	DialTimeout time.Duration
	DialMaxWait time.Duration

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string
}

func (c Config) Enabled() bool { return c.Address != "" }

func LoadConfig(log *logger.Logger) Config {
	retention := utils.GetEnvAsInt("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7, log)
	if retention < 1 || retention > 365 {
		retention = 7
	}
	return Config{
		Address:   utils.GetEnv("TEMPORAL_ADDRESS", "", log),
		Namespace: utils.GetEnv("TEMPORAL_NAMESPACE", "mentor", log),
		TaskQueue: utils.GetEnv("TEMPORAL_TASK_QUEUE", "mentor-maintenance", log),

		CronSchedule:          utils.GetEnv("TEMPORAL_MAINTENANCE_CRON", "5 * * * *", log),
		AutoRegisterNamespace: utils.GetEnvAsBool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false, log),
		RetentionDays:         retention,

		DialTimeout: secondsAtLeast(utils.GetEnvAsInt("TEMPORAL_DIAL_TIMEOUT_SECONDS", 5, log), 1),
		DialMaxWait: secondsAtLeast(utils.GetEnvAsInt("TEMPORAL_DIAL_MAX_WAIT_SECONDS", 60, log), 0),

		ClientCertPath: utils.GetEnv("TEMPORAL_CLIENT_CERT_PATH", "", log),
		ClientKeyPath:  utils.GetEnv("TEMPORAL_CLIENT_KEY_PATH", "", log),
		ClientCAPath:   utils.GetEnv("TEMPORAL_CLIENT_CA_PATH", "", log),
	}
}

func secondsAtLeast(n, min int) time.Duration {
	if n < min {
		n = min
	}
	return time.Duration(n) * time.Second
}
