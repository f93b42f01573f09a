package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// App mode & server
	Mode         string
	ServerAddr   string
	ClientOrigin string
	CORSOrigins  []string
	LogLevel     string
	TLSCertFile  string
	TLSKeyFile   string

	// Uploads
	UploadDir      string
	UploadMaxBytes int64

	// Store
	StoreDriver string

	// Mongo
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// Cassandra
	CassandraHost       string
	CassandraKeyspace   string
	CassandraUsername   string
	CassandraPassword   string
	CassandraTimeout    time.Duration
	CassandraDC         string
	CassandraMigrations string

	// Kafka
	KafkaEnabled   bool
	KafkaBroker    string
	KafkaTopic     string
	KafkaGroupID   string
	KafkaPartition int
	KafkaReadTO    time.Duration
	KafkaWriteTO   time.Duration

	// Activity worker
	WorkerCount     int
	WorkerQueueSize int
}

// Init loads the config using Viper and returns it
func Init() *Config {
	// A .env file is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Load env variables
	v.AutomaticEnv()

	// Optional config file support
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignore error if no file

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODE", "server")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)

	v.SetDefault("STORE_DRIVER", "mongo")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "users")
	v.SetDefault("MONGO_TIMEOUT", "10s")

	v.SetDefault("CASSANDRA_HOST", "localhost")
	v.SetDefault("CASSANDRA_KEYSPACE", "campusfeed")
	v.SetDefault("CASSANDRA_TIMEOUT", "10s")
	v.SetDefault("CASSANDRA_MIGRATIONS", "./migrations/cassandra")
	// Optional: Cassandra username/password/DC can be empty

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKER", "localhost:29092")
	v.SetDefault("KAFKA_TOPIC", "campus-activity")
	v.SetDefault("KAFKA_GROUP_ID", "activity-worker")
	v.SetDefault("KAFKA_PARTITION", 0)
	v.SetDefault("KAFKA_READ_TIMEOUT", "10s")
	v.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")

	v.SetDefault("WORKER_COUNT", 0)
	v.SetDefault("WORKER_QUEUE_SIZE", 0)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Mode:                v.GetString("MODE"),
		ServerAddr:          v.GetString("SERVER_ADDR"),
		ClientOrigin:        v.GetString("CLIENT_ORIGIN"),
		CORSOrigins:         splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:            v.GetString("LOG_LEVEL"),
		TLSCertFile:         v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:          v.GetString("TLS_KEY_FILE"),
		UploadDir:           v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:      v.GetInt64("UPLOAD_MAX_BYTES"),
		StoreDriver:         strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDatabase:       v.GetString("MONGO_DATABASE"),
		MongoTimeout:        parseDuration(v.GetString("MONGO_TIMEOUT"), 10*time.Second),
		CassandraHost:       v.GetString("CASSANDRA_HOST"),
		CassandraKeyspace:   v.GetString("CASSANDRA_KEYSPACE"),
		CassandraUsername:   v.GetString("CASSANDRA_USERNAME"),
		CassandraPassword:   v.GetString("CASSANDRA_PASSWORD"),
		CassandraTimeout:    parseDuration(v.GetString("CASSANDRA_TIMEOUT"), 10*time.Second),
		CassandraDC:         v.GetString("CASSANDRA_DC"),
		CassandraMigrations: v.GetString("CASSANDRA_MIGRATIONS"),
		KafkaEnabled:        v.GetBool("KAFKA_ENABLED"),
		KafkaBroker:         v.GetString("KAFKA_BROKER"),
		KafkaTopic:          v.GetString("KAFKA_TOPIC"),
		KafkaGroupID:        v.GetString("KAFKA_GROUP_ID"),
		KafkaPartition:      v.GetInt("KAFKA_PARTITION"),
		KafkaReadTO:         parseDuration(v.GetString("KAFKA_READ_TIMEOUT"), 10*time.Second),
		KafkaWriteTO:        parseDuration(v.GetString("KAFKA_WRITE_TIMEOUT"), 10*time.Second),
		WorkerCount:         v.GetInt("WORKER_COUNT"),
		WorkerQueueSize:     v.GetInt("WORKER_QUEUE_SIZE"),
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// splitList turns "a, b,c" into [a b c], dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
