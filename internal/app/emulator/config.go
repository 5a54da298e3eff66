package emulatorapp

import "time"

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
	Completer     CompleterConfig     `yaml:"completer"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Seed          []SeedOperation     `yaml:"seed"`
}

type ServerConfig struct {
	Grpc GrpcConfig `yaml:"grpc"`
}

type GrpcConfig struct {
	Address string `yaml:"address" env-default:"127.0.0.1:55055"`
}

type StorageConfig struct {
	URL string `yaml:"url" env-required:"true"`
}

type ObjectStorageConfig struct {
	Endpoint          string `yaml:"endpoint" env-required:"true"`
	ResultsBucketName string `yaml:"results_bucket_name" env-default:"operation-results"`
	User              string `yaml:"user" env-required:"true"`
	Password          string `yaml:"password" env-required:"true"`
	UseSSL            bool   `yaml:"use_ssl" env-default:"false"`

	// Responses above this size are offloaded to object storage.
	InlineLimitBytes int `yaml:"inline_limit_bytes" env-default:"65536"`
}

type CompleterConfig struct {
	Slots int `yaml:"slots" env-default:"4"`
}

type MetricsConfig struct {
	Address string `yaml:"address" env-default:"127.0.0.1:9090"`
}

// SeedOperation describes a scripted operation created at boot. With a
// positive due_in the completer finishes it after the delay; otherwise it
// stays running until completed or cancelled through the API.
type SeedOperation struct {
	ID           string        `yaml:"id"`
	Metadata     string        `yaml:"metadata"`
	DueIn        time.Duration `yaml:"due_in"`
	Response     string        `yaml:"response"`
	ErrorCode    int32         `yaml:"error_code"`
	ErrorMessage string        `yaml:"error_message"`
}
