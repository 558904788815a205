package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DocsConfig controls access to the API documentation routes
type DocsConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs, empty allows all
}

// DocsProtection guards /swagger and /redoc. Disabled docs answer 404 and
// clients outside AllowedIPs get 403.
func DocsProtection(cfg DocsConfig) gin.HandlerFunc {
	allowedIPs, allowedNets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		if len(cfg.AllowedIPs) > 0 && !isIPAllowed(getClientIP(c), allowedIPs, allowedNets) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"detail": []string{"You do not have permission to perform this action."},
			})
			return
		}
		c.Next()
	}
}

func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips, nets
}

// getClientIP prefers gin's ClientIP, which honours the trusted proxies
func getClientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
