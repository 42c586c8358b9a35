package payments

type WalletConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Filename   string `yaml:"filename"`
	Password   string `yaml:"wallet_password"`
	DaemonHost string `yaml:"daemon_host"`
	DaemonPort int    `yaml:"daemon_port"`
}

type Config struct {
	Coin            string `yaml:"coin"`
	RedisAddress    string `yaml:"redis_address"`
	PostgresConfig  string `yaml:"postgres"`
	PromPort        string `yaml:"prom_port"`
	HealthCheckPort string `yaml:"health_check_port"`

	PoolAddress   string `yaml:"pool_address"`
	AddressPrefix uint64 `yaml:"address_prefix"`

	Wallet        WalletConfig `yaml:"wallet"`
	UseMockWallet bool         `yaml:"use_mock_wallet"`

	// MinPayment is the default payout threshold; workers with a payment id
	// address are floored to MinPaymentIDPayment regardless of their own
	// configured level.
	MinPayment          int64 `yaml:"min_payment"`
	MinPaymentIDPayment int64 `yaml:"min_payment_id_payment"`
	Denomination        int64 `yaml:"denomination"`
	Mixin               int64 `yaml:"mixin"`
	TransferFee         int64 `yaml:"transfer_fee"`
	MaxAddresses        int   `yaml:"max_addresses"`
	// MaxTransactionAmount caps the aggregate of one command; 0 is unlimited.
	MaxTransactionAmount int64 `yaml:"max_transaction_amount"`
	// Interval is the delay in seconds between the end of one settlement
	// cycle and the start of the next.
	Interval int64 `yaml:"interval"`
}

const defaultMixin = 3

func (c Config) EffectiveMixin() int64 {
	if c.Mixin == 0 {
		return defaultMixin
	}
	return c.Mixin
}
