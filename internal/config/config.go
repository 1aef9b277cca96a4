package config

import "time"

// Config is the root pipeline configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Registry   RegistryConfig   `yaml:"registry"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Log        LogConfig        `yaml:"log"`
}

// LLMConfig holds the external LLM client settings (spec §6: complete/embed).
type LLMConfig struct {
	APIEndpoint      string        `yaml:"api_endpoint"       env:"LLM_API_ENDPOINT"       env-default:"https://api.anthropic.com"`
	APIKey           string        `yaml:"api_key"            env:"LLM_API_KEY"            env-required:"true"`
	ModelFast        string        `yaml:"model_fast"         env:"LLM_MODEL_FAST"         env-default:"claude-haiku-4-5"`
	ModelBalanced    string        `yaml:"model_balanced"     env:"LLM_MODEL_BALANCED"     env-default:"claude-sonnet-4-5"`
	ModelSmart       string        `yaml:"model_smart"        env:"LLM_MODEL_SMART"        env-default:"claude-opus-4-5"`
	Concurrency      int           `yaml:"concurrency"        env:"LLM_CONCURRENCY"        env-default:"12"`
	RequestDelay     time.Duration `yaml:"request_delay"      env:"LLM_REQUEST_DELAY"      env-default:"1200ms"`
	MaxRetries       int           `yaml:"max_retries"        env:"LLM_MAX_RETRIES"        env-default:"5"`
	RequestTimeout   time.Duration `yaml:"request_timeout"    env:"LLM_REQUEST_TIMEOUT"    env-default:"60s"`
	DefaultTemperature float64     `yaml:"default_temperature" env:"LLM_DEFAULT_TEMPERATURE" env-default:"0.2"`
}

// EmbeddingConfig holds settings for the embed() operation, which shares the
// LLM client's semaphore but has its own endpoint/model (spec §6.2).
type EmbeddingConfig struct {
	APIEndpoint string        `yaml:"api_endpoint" env:"EMBEDDING_API_ENDPOINT" env-default:"https://api.voyageai.com/v1/embeddings"`
	APIKey      string        `yaml:"api_key"      env:"EMBEDDING_API_KEY"`
	Model       string        `yaml:"model"        env:"EMBEDDING_MODEL"        env-default:"voyage-3-lite"`
	Timeout     time.Duration `yaml:"timeout"      env:"EMBEDDING_TIMEOUT"      env-default:"30s"`
}

// DictionaryConfig holds the external dictionary API's throttle settings
// (spec §4.5/§5): single in-flight request, base interval, 429 growth ceiling.
type DictionaryConfig struct {
	BaseURL         string        `yaml:"base_url"          env:"DICT_BASE_URL"          env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	RequestTimeout  time.Duration `yaml:"request_timeout"   env:"DICT_REQUEST_TIMEOUT"   env-default:"30s"`
	BaseInterval    time.Duration `yaml:"base_interval"     env:"DICT_BASE_INTERVAL"     env-default:"600ms"`
	MaxInterval     time.Duration `yaml:"max_interval"      env:"DICT_MAX_INTERVAL"      env-default:"2500ms"`
	MaxBackoffWait  time.Duration `yaml:"max_backoff_wait"  env:"DICT_MAX_BACKOFF_WAIT"  env-default:"8s"`
}

// RegistryConfig holds the embedded sense-registry database settings
// (spec §4.4: single-file embedded database, WAL mode).
type RegistryConfig struct {
	Path            string        `yaml:"path"              env:"REGISTRY_PATH"              env-default:"./registry.db"`
	BusyTimeout     time.Duration `yaml:"busy_timeout"      env:"REGISTRY_BUSY_TIMEOUT"      env-default:"5s"`
	MigrationsTable string        `yaml:"migrations_table"  env:"REGISTRY_MIGRATIONS_TABLE"  env-default:"goose_db_version"`
}

// PipelineConfig holds batch-size and chunking parameters used across C1-C8.
type PipelineConfig struct {
	NormalizerBatchSentences int `yaml:"normalizer_batch_sentences" env:"PIPELINE_NORMALIZER_BATCH_SENTENCES" env-default:"64"`
	NormalizerBatchSurfaces  int `yaml:"normalizer_batch_surfaces"  env:"PIPELINE_NORMALIZER_BATCH_SURFACES"  env-default:"256"`
	ClusterBatchLemmas       int `yaml:"cluster_batch_lemmas"       env:"PIPELINE_CLUSTER_BATCH_LEMMAS"       env-default:"10"`
	GenerationBatchEntries   int `yaml:"generation_batch_entries"   env:"PIPELINE_GENERATION_BATCH_ENTRIES"   env-default:"20"`
	WSDFallbackBatchLemmas   int `yaml:"wsd_fallback_batch_lemmas"  env:"PIPELINE_WSD_FALLBACK_BATCH_LEMMAS"  env-default:"15"`
	WSDChunkSize             int `yaml:"wsd_chunk_size"             env:"PIPELINE_WSD_CHUNK_SIZE"             env-default:"200"`
	WSDCrossEncoderBatch     int `yaml:"wsd_cross_encoder_batch"    env:"PIPELINE_WSD_CROSS_ENCODER_BATCH"    env-default:"64"`
	CrossEncoderModelPath    string `yaml:"cross_encoder_model_path" env:"PIPELINE_CROSS_ENCODER_MODEL_PATH" env-default:"./models/cross-encoder.onnx"`
	ONNXRuntimeLibPath       string `yaml:"onnxruntime_lib_path"      env:"PIPELINE_ONNXRUNTIME_LIB_PATH"      env-default:"./lib/libonnxruntime.so"`
	WordNetPath              string `yaml:"wordnet_path"              env:"PIPELINE_WORDNET_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
