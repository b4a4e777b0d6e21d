package apiclient

// Wire types for the settings API

// LibraryDTO is a library as returned inside connection settings and sync status
type LibraryDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ConnectionDTO is the GET /settings/connection response
type ConnectionDTO struct {
	Name      string       `json:"name,omitempty"`
	MachineID string       `json:"machineId,omitempty"`
	IP        string       `json:"ip"`
	Port      *int         `json:"port,omitempty"`
	UseSSL    bool         `json:"useSsl"`
	WebAppURL string       `json:"webAppUrl,omitempty"`
	Libraries []LibraryDTO `json:"libraries,omitempty"`
}

// SaveConnectionRequest is the POST /settings/connection body
type SaveConnectionRequest struct {
	IP        string `json:"ip"`
	Port      int    `json:"port"`
	UseSSL    bool   `json:"useSsl"`
	WebAppURL string `json:"webAppUrl"`
}

// DeviceDTO is one entry of GET /settings/connection/devices
type DeviceDTO struct {
	Name             string          `json:"name"`
	Product          string          `json:"product,omitempty"`
	ClientIdentifier string          `json:"clientIdentifier,omitempty"`
	Connection       []ConnectionRef `json:"connection"`
}

// ConnectionRef is a single endpoint of a device
type ConnectionRef struct {
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	URI      string `json:"uri,omitempty"`
	Local    bool   `json:"local"`
	Status   int    `json:"status,omitempty"`
	Message  string `json:"message,omitempty"`
}

// SyncStatusDTO is the GET/POST /settings/connection/sync response
type SyncStatusDTO struct {
	Running        bool         `json:"running"`
	Progress       int          `json:"progress"`
	Total          int          `json:"total"`
	CurrentLibrary *LibraryDTO  `json:"currentLibrary,omitempty"`
	Libraries      []LibraryDTO `json:"libraries"`
}

// SyncControlRequest is the POST /settings/connection/sync body
type SyncControlRequest struct {
	Start  bool `json:"start,omitempty"`
	Cancel bool `json:"cancel,omitempty"`
}

// NotificationTypesDTO carries per-channel bitmasks. Every channel is always
// sent so a cleared mask reaches the server as 0.
type NotificationTypesDTO struct {
	Email      int `json:"email"`
	Discord    int `json:"discord"`
	Pushbullet int `json:"pushbullet"`
	Pushover   int `json:"pushover"`
	Telegram   int `json:"telegram"`
	WebPush    int `json:"webpush"`
}

// NotificationSettingsDTO is the GET and POST /settings/notifications/{userId} shape
type NotificationSettingsDTO struct {
	EmailEnabled             *bool                `json:"emailEnabled,omitempty"`
	PGPKey                   string               `json:"pgpKey"`
	DiscordID                string               `json:"discordId"`
	PushbulletAccessToken    string               `json:"pushbulletAccessToken"`
	PushoverApplicationToken string               `json:"pushoverApplicationToken"`
	PushoverUserKey          string               `json:"pushoverUserKey"`
	TelegramChatID           string               `json:"telegramChatId"`
	TelegramSendSilently     bool                 `json:"telegramSendSilently"`
	WebPushEnabled           *bool                `json:"webPushEnabled,omitempty"`
	NotificationTypes        NotificationTypesDTO `json:"notificationTypes"`
}

// ErrorBody is the JSON error envelope the server returns on failure
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
