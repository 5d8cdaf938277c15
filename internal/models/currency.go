package models

// CountryCurrency is immutable reference data mapping a country to its
// currency name, symbol and ISO code. Seeded once, never soft-deleted.
type CountryCurrency struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CountryName  string `gorm:"size:100" json:"country_name"`
	CurrencyName string `gorm:"size:50" json:"currency_name"`
	Symbol       string `gorm:"size:10" json:"symbol"`
	CurrencyCode string `gorm:"size:10" json:"currency_code"`
}

// DefaultCurrencySymbol and DefaultCurrencyName are the hard-coded fallbacks
// used by document rendering when no currency link can be resolved.
const (
	DefaultCurrencySymbol = "$"
	DefaultCurrencyName   = "USD"
)

// SeedCurrencies is the reference currency table shipped with the system.
func SeedCurrencies() []CountryCurrency {
	return []CountryCurrency{
		{ID: 1, CountryName: "United States", CurrencyName: "US Dollar", Symbol: "$", CurrencyCode: "USD"},
		{ID: 2, CountryName: "United Kingdom", CurrencyName: "Pound Sterling", Symbol: "£", CurrencyCode: "GBP"},
		{ID: 3, CountryName: "European Union", CurrencyName: "Euro", Symbol: "€", CurrencyCode: "EUR"},
		{ID: 4, CountryName: "Japan", CurrencyName: "Japanese Yen", Symbol: "¥", CurrencyCode: "JPY"},
		{ID: 5, CountryName: "India", CurrencyName: "Indian Rupee", Symbol: "₹", CurrencyCode: "INR"},
		{ID: 6, CountryName: "Canada", CurrencyName: "Canadian Dollar", Symbol: "C$", CurrencyCode: "CAD"},
		{ID: 7, CountryName: "Australia", CurrencyName: "Australian Dollar", Symbol: "A$", CurrencyCode: "AUD"},
		{ID: 8, CountryName: "Switzerland", CurrencyName: "Swiss Franc", Symbol: "CHF", CurrencyCode: "CHF"},
		{ID: 9, CountryName: "China", CurrencyName: "Chinese Yuan", Symbol: "¥", CurrencyCode: "CNY"},
		{ID: 10, CountryName: "Russia", CurrencyName: "Russian Ruble", Symbol: "₽", CurrencyCode: "RUB"},
		{ID: 11, CountryName: "Brazil", CurrencyName: "Brazilian Real", Symbol: "R$", CurrencyCode: "BRL"},
		{ID: 12, CountryName: "South Korea", CurrencyName: "South Korean Won", Symbol: "₩", CurrencyCode: "KRW"},
		{ID: 13, CountryName: "Mexico", CurrencyName: "Mexican Peso", Symbol: "$", CurrencyCode: "MXN"},
		{ID: 14, CountryName: "South Africa", CurrencyName: "South African Rand", Symbol: "R", CurrencyCode: "ZAR"},
		{ID: 15, CountryName: "Singapore", CurrencyName: "Singapore Dollar", Symbol: "S$", CurrencyCode: "SGD"},
		{ID: 16, CountryName: "New Zealand", CurrencyName: "New Zealand Dollar", Symbol: "NZ$", CurrencyCode: "NZD"},
		{ID: 17, CountryName: "Turkey", CurrencyName: "Turkish Lira", Symbol: "₺", CurrencyCode: "TRY"},
		{ID: 18, CountryName: "Saudi Arabia", CurrencyName: "Saudi Riyal", Symbol: "﷼", CurrencyCode: "SAR"},
		{ID: 19, CountryName: "Sweden", CurrencyName: "Swedish Krona", Symbol: "kr", CurrencyCode: "SEK"},
		{ID: 20, CountryName: "Norway", CurrencyName: "Norwegian Krone", Symbol: "kr", CurrencyCode: "NOK"},
	}
}
