package shipper

import (
	"time"

	"github.com/xela07ax/httplog-starter/internal/advice"
)

// Record — запись лога в том виде, в котором она уходит во внешнее хранилище.
type Record struct {
	ID        string       `json:"id"`
	Level     advice.Level `json:"level"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}
