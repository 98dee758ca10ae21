package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// SettingType declares how a setting value is parsed.
type SettingType string

const (
	SettingTypeNumber  SettingType = "NUMBER"
	SettingTypeDecimal SettingType = "DECIMAL"
	SettingTypeBoolean SettingType = "BOOLEAN"
	SettingTypeString  SettingType = "STRING"
)

// GlobalSetting is an admin-managed key/value/type triple.
type GlobalSetting struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Type        SettingType `json:"type"`
	Description string      `json:"description"`
	AuditFields
}

// ValidateValue checks value against the declared type.
func (t SettingType) ValidateValue(value string) error {
	switch t {
	case SettingTypeNumber:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("value %q is not a whole number", value)
		}
	case SettingTypeDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("value %q is not a decimal", value)
		}
	case SettingTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("value %q is not a boolean", value)
		}
	case SettingTypeString:
	default:
		return fmt.Errorf("unknown setting type %q", t)
	}
	return nil
}

// Setting keys read by the services.
const (
	MaxClientAccountBalanceSettingKey = "maxClientAccountBalance"
	MaxDailyNewClientsSettingKey      = "maxDailyNewClients"
)

// DefaultSettings are seeded when absent.
var DefaultSettings = []GlobalSetting{
	{Key: MaxClientAccountBalanceSettingKey, Value: "1000000.00", Type: SettingTypeDecimal, Description: "Maximum balance allowed on a client account"},
	{Key: MaxDailyNewClientsSettingKey, Value: "50", Type: SettingTypeNumber, Description: "Maximum number of clients an agent may enroll per day"},
	{Key: FeePercentageSettingKey, Value: "1.5", Type: SettingTypeDecimal, Description: "Platform fee percentage applied to transfers and crypto purchases"},
}
