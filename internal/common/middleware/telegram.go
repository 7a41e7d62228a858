package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/common/logger"
)

// Context keys to store the caller identity derived from Telegram init-data.
const (
	TelegramIDKey       = "telegram_id"
	TelegramUsernameKey = "telegram_username"

	InitDataHeader      = "X-Telegram-Init-Data"
	DevIdentityHeader   = "X-Telegram-User-Id"
	legacyInitDataField = "init_data"
)

type IdentityOptions struct {
	BotToken string
	// TTL for init-data expiration (0 disables the check)
	InitDataTTL time.Duration
	// Accept DevIdentityHeader without signature checks (local development only)
	AllowDevHeader bool
}

// TelegramIdentity resolves the caller from Telegram Mini App init-data.
// Init-data is looked up in the X-Telegram-Init-Data header, the init_data
// header and the init_data query parameter, in that order. Requests without
// init-data pass through anonymous; RequireIdentity rejects them where needed.
func TelegramIdentity(opts IdentityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			raw = c.GetHeader(legacyInitDataField)
		}
		if raw == "" {
			raw = c.Query(legacyInitDataField)
		}

		if raw == "" {
			if opts.AllowDevHeader {
				if id := c.GetHeader(DevIdentityHeader); id != "" {
					c.Set(TelegramIDKey, id)
				}
			}
			c.Next()
			return
		}

		if opts.BotToken == "" {
			sendErrorResponse(c, errors.New(errors.ErrCodeInternal, "init data validation is not configured"))
			return
		}

		if err := initdata.Validate(raw, opts.BotToken, opts.InitDataTTL); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			sendErrorResponse(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			sendErrorResponse(c, errors.NewBadRequestError("Failed to parse init data"))
			return
		}

		// parsed.User is a value type; a zero ID means the payload carries no user
		if parsed.User.ID != 0 {
			c.Set(TelegramIDKey, strconv.FormatInt(parsed.User.ID, 10))
			c.Set(TelegramUsernameKey, parsed.User.Username)
		}

		c.Next()
	}
}

// RequireIdentity rejects requests without a resolved caller.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := TelegramID(c); !ok {
			sendErrorResponse(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		c.Next()
	}
}

// TelegramID returns the caller's Telegram id set by TelegramIdentity.
func TelegramID(c *gin.Context) (string, bool) {
	id := c.GetString(TelegramIDKey)
	return id, id != ""
}

func TelegramUsername(c *gin.Context) string {
	return c.GetString(TelegramUsernameKey)
}
