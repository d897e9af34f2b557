package middleware

import (
	"net"

	"github.com/gofiber/fiber/v2"
)

// LocalOnly rejects requests that do not come from the loopback interface.
// The warehouse API has no accounts, so it must not be reachable from the
// network even when bound to a wider address by mistake.
func LocalOnly() fiber.Handler {
	return AllowNetworks(
		&net.IPNet{IP: net.IPv4(127, 0, 0, 0), Mask: net.CIDRMask(8, 32)},
		&net.IPNet{IP: net.IPv6loopback, Mask: net.CIDRMask(128, 128)},
	)
}

// AllowNetworks admits only clients whose address falls in one of nets.
func AllowNetworks(nets ...*net.IPNet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.Context().RemoteIP()
		for _, n := range nets {
			if n.Contains(ip) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: local access only"})
	}
}
