package connectivity

import (
	"context"
	"net"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/pkg/constvars"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	probeInstance contracts.ConnectivityProbe
	onceProbe     sync.Once
)

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type probe struct {
	Address string
	Timeout time.Duration
	Log     *zap.Logger
	dial    dialFunc
}

// NewProbe dials a well-known address over TCP to decide whether remote calls are worth attempting.
func NewProbe(address string, timeout time.Duration, logger *zap.Logger) contracts.ConnectivityProbe {
	onceProbe.Do(func() {
		probeInstance = newProbe(address, timeout, logger)
	})
	return probeInstance
}

func newProbe(address string, timeout time.Duration, logger *zap.Logger) *probe {
	dialer := &net.Dialer{}
	return &probe{
		Address: address,
		Timeout: timeout,
		Log:     logger,
		dial:    dialer.DialContext,
	}
}

func (p *probe) Check(ctx context.Context) bool {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dial(ctx, "tcp", p.Address)
	if err != nil {
		p.Log.Warn("probe.Check remote network unreachable",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, p.Address),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		return false
	}
	conn.Close()

	p.Log.Debug("probe.Check remote network reachable",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	return true
}

// Static always answers the same. Useful for tests and for forcing offline mode.
type Static bool

func (s Static) Check(context.Context) bool {
	return bool(s)
}
