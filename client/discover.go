package client

import (
	"context"
	"io"
	stdlog "log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/amimof/huego"
	"github.com/hashicorp/mdns"
	log "github.com/sirupsen/logrus"
	tomb "gopkg.in/tomb.v2"
)

const hueService = "_hue._tcp"

// Discoverer finds bridge base URLs on the local network.
type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}

// DiscoverFunc adapts a plain function to Discoverer.
type DiscoverFunc func(ctx context.Context) ([]string, error)

func (f DiscoverFunc) Discover(ctx context.Context) ([]string, error) {
	return f(ctx)
}

type networkDiscoverer struct {
	timeout time.Duration
	cloud   bool
}

// NewDiscoverer returns a Discoverer that listens for mDNS announcements for
// the given duration and, when cloud is set, also asks the vendor's
// discovery endpoint.
func NewDiscoverer(timeout time.Duration, cloud bool) Discoverer {
	return &networkDiscoverer{timeout: timeout, cloud: cloud}
}

func (d *networkDiscoverer) Discover(ctx context.Context) ([]string, error) {
	found := []string{}
	seen := map[string]bool{}
	add := func(address string) {
		if !seen[address] {
			seen[address] = true
			found = append(found, address)
		}
	}

	entries, err := lookupMDNS(ctx, d.timeout)
	if err != nil {
		log.WithError(err).Warn("mDNS lookup failed")
	}
	for _, address := range entries {
		add(address)
	}

	if d.cloud {
		bridges, err := huego.DiscoverAll()
		if err != nil {
			log.WithError(err).Warn("cloud discovery failed")
		}
		for _, bridge := range bridges {
			if bridge.Host != "" {
				add(NormalizeAddress(bridge.Host))
			}
		}
	}

	return found, nil
}

func lookupMDNS(ctx context.Context, d time.Duration) ([]string, error) {
	// mdns logs through the standard logger.
	stdlog.SetOutput(io.Discard)
	defer stdlog.SetOutput(os.Stderr)

	ch := make(chan *mdns.ServiceEntry, 5)
	var t tomb.Tomb
	t.Go(func() error {
		defer close(ch)
		return mdns.Query(&mdns.QueryParam{
			Service:     hueService,
			Domain:      "local",
			Timeout:     d,
			Entries:     ch,
			DisableIPv6: true,
		})
	})

	possibilities := []string{}
	for {
		select {
		case entry, ok := <-ch:
			if !ok {
				return possibilities, t.Wait()
			}
			if entry.AddrV4 == nil {
				continue
			}
			host := entry.AddrV4.String()
			// Bridges advertise their HTTPS port; the v1 API answers on plain http.
			if entry.Port != 0 && entry.Port != 443 {
				host = net.JoinHostPort(host, strconv.Itoa(entry.Port))
			}
			possibility := NormalizeAddress(host)
			log.WithFields(log.Fields{
				"name":    entry.Name,
				"address": possibility,
			}).Debug("found bridge")
			possibilities = append(possibilities, possibility)
		case <-ctx.Done():
			t.Kill(ctx.Err())
			// Drain so the query goroutine can finish sending.
			for range ch {
			}
			t.Wait()
			return possibilities, ctx.Err()
		}
	}
}
