package apiclient

import (
	"strings"

	"github.com/mmcdole/seerctl/internal/domain"
)

// MapLibraries converts wire libraries to domain libraries
func MapLibraries(in []LibraryDTO) []domain.Library {
	libs := make([]domain.Library, 0, len(in))
	for _, l := range in {
		libs = append(libs, mapLibrary(l))
	}
	return libs
}

func mapLibrary(l LibraryDTO) domain.Library {
	return domain.Library{ID: l.ID, Name: l.Name, Enabled: l.Enabled}
}

// MapConnection converts the settings response, falling back to defaults for
// absent fields
func MapConnection(dto ConnectionDTO) domain.ConnectionSettings {
	out := domain.DefaultConnectionSettings()
	out.Name = dto.Name
	out.MachineID = dto.MachineID
	out.Host = dto.IP
	if dto.Port != nil && *dto.Port > 0 {
		out.Port = *dto.Port
	}
	out.UseSecureTransport = dto.UseSSL
	out.ExternalURL = dto.WebAppURL
	out.Libraries = MapLibraries(dto.Libraries)
	return out
}

// ToSaveConnection builds the full persist payload
func ToSaveConnection(s domain.ConnectionSettings) SaveConnectionRequest {
	return SaveConnectionRequest{
		IP:        strings.TrimSpace(s.Host),
		Port:      s.Port,
		UseSSL:    s.UseSecureTransport,
		WebAppURL: strings.TrimSpace(s.ExternalURL),
	}
}

// MapDevices converts discovery results
func MapDevices(in []DeviceDTO) []domain.Device {
	devices := make([]domain.Device, 0, len(in))
	for _, d := range in {
		conns := make([]domain.DeviceConnection, 0, len(d.Connection))
		for _, c := range d.Connection {
			conns = append(conns, domain.DeviceConnection{
				Protocol: strings.ToLower(c.Protocol),
				Address:  c.Address,
				Port:     c.Port,
				URI:      c.URI,
				Local:    c.Local,
				Status:   c.Status,
				Message:  c.Message,
			})
		}
		devices = append(devices, domain.Device{
			Name:             d.Name,
			ClientIdentifier: d.ClientIdentifier,
			Product:          d.Product,
			Connections:      conns,
		})
	}
	return devices
}

// MapSyncStatus converts a scan status
func MapSyncStatus(dto SyncStatusDTO) domain.SyncStatus {
	out := domain.SyncStatus{
		Running:   dto.Running,
		Progress:  dto.Progress,
		Total:     dto.Total,
		Libraries: MapLibraries(dto.Libraries),
	}
	if dto.CurrentLibrary != nil {
		lib := mapLibrary(*dto.CurrentLibrary)
		out.CurrentLibrary = &lib
	}
	return out
}

// MapNotificationSettings converts a user's notification settings.
// When the server does not report emailEnabled it is derived from the mask.
func MapNotificationSettings(dto NotificationSettingsDTO) domain.NotificationSettings {
	out := domain.NotificationSettings{
		PGPKey:                   dto.PGPKey,
		DiscordID:                dto.DiscordID,
		PushbulletAccessToken:    dto.PushbulletAccessToken,
		PushoverApplicationToken: dto.PushoverApplicationToken,
		PushoverUserKey:          dto.PushoverUserKey,
		TelegramChatID:           dto.TelegramChatID,
		TelegramSendSilently:     dto.TelegramSendSilently,
		NotificationTypes: map[domain.Channel]domain.NotificationType{
			domain.ChannelEmail:      domain.NotificationType(dto.NotificationTypes.Email),
			domain.ChannelDiscord:    domain.NotificationType(dto.NotificationTypes.Discord),
			domain.ChannelPushbullet: domain.NotificationType(dto.NotificationTypes.Pushbullet),
			domain.ChannelPushover:   domain.NotificationType(dto.NotificationTypes.Pushover),
			domain.ChannelTelegram:   domain.NotificationType(dto.NotificationTypes.Telegram),
			domain.ChannelWebPush:    domain.NotificationType(dto.NotificationTypes.WebPush),
		},
	}
	if dto.EmailEnabled != nil {
		out.EmailEnabled = *dto.EmailEnabled
	} else {
		out.EmailEnabled = dto.NotificationTypes.Email != 0
	}
	if dto.WebPushEnabled != nil {
		out.WebPushEnabled = *dto.WebPushEnabled
	} else {
		out.WebPushEnabled = dto.NotificationTypes.WebPush != 0
	}
	return out
}

// ToNotificationSettings builds the full persist payload. A disabled email
// channel is sent with a zero mask.
func ToNotificationSettings(s domain.NotificationSettings) NotificationSettingsDTO {
	email := s.Types(domain.ChannelEmail)
	if !s.EmailEnabled {
		email = domain.NotificationNone
	}
	webpush := s.Types(domain.ChannelWebPush)
	if !s.WebPushEnabled {
		webpush = domain.NotificationNone
	}
	return NotificationSettingsDTO{
		PGPKey:                   strings.TrimSpace(s.PGPKey),
		DiscordID:                strings.TrimSpace(s.DiscordID),
		PushbulletAccessToken:    strings.TrimSpace(s.PushbulletAccessToken),
		PushoverApplicationToken: strings.TrimSpace(s.PushoverApplicationToken),
		PushoverUserKey:          strings.TrimSpace(s.PushoverUserKey),
		TelegramChatID:           strings.TrimSpace(s.TelegramChatID),
		TelegramSendSilently:     s.TelegramSendSilently,
		NotificationTypes: NotificationTypesDTO{
			Email:      int(email),
			Discord:    int(s.Types(domain.ChannelDiscord)),
			Pushbullet: int(s.Types(domain.ChannelPushbullet)),
			Pushover:   int(s.Types(domain.ChannelPushover)),
			Telegram:   int(s.Types(domain.ChannelTelegram)),
			WebPush:    int(webpush),
		},
	}
}
