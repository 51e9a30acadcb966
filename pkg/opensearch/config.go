package opensearch

// Config holds OpenSearch connection parameters and the target index.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES,required"`
	Username     string   `env:"OPENSEARCH_USERNAME,notEmpty"`
	Password     string   `env:"OPENSEARCH_PASSWORD,notEmpty"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`

	Index      string `env:"OPENSEARCH_INDEX" envDefault:"logs"`       // Index is the target index, or the prefix of daily indices.
	DailyIndex bool   `env:"OPENSEARCH_DAILY_INDEX" envDefault:"true"` // DailyIndex appends the event date, e.g. logs-2025.06.01.
	Refresh    string `env:"OPENSEARCH_REFRESH" envDefault:"false"`    // Refresh is passed to the bulk API: true, false or wait_for.
}
