package model

// SubscribableRole is a chat role members may add to or remove from themselves.
type SubscribableRole struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Type        string `mapstructure:"type"`
}
