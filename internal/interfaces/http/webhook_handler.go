package http

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GiancarloGO/master-color-api/internal/application/dto"
	"github.com/GiancarloGO/master-color-api/internal/application/payment"
	"github.com/GiancarloGO/master-color-api/internal/infrastructure/kv"
	"github.com/GiancarloGO/master-color-api/pkg/config"
	"github.com/GiancarloGO/master-color-api/pkg/logger"
)

// WebhookHandler recibe las notificaciones de MercadoPago. El endpoint es
// público (la pasarela no se autentica), así que aplica tres filtros antes de
// procesar: user agent, origen de red y rate limit por IP.
type WebhookHandler struct {
	uc      *payment.UseCase
	store   kv.Store
	local   bool
	cidrs   []*net.IPNet
	singles []net.IP
	limit   int64
	log     *logger.Logger
}

// NewWebhookHandler construye el handler con los filtros de seguridad
// derivados de la configuración. Los CIDR mal formados se descartan con log.
func NewWebhookHandler(uc *payment.UseCase, store kv.Store, appCfg config.AppConfig, whCfg config.WebhookConfig, log *logger.Logger) *WebhookHandler {
	h := &WebhookHandler{
		uc:    uc,
		store: store,
		local: appCfg.IsLocal(),
		limit: int64(whCfg.RateLimit),
		log:   log,
	}
	if h.limit <= 0 {
		h.limit = 50
	}
	for _, raw := range whCfg.AllowedCIDRs {
		if _, ipnet, err := net.ParseCIDR(raw); err == nil {
			h.cidrs = append(h.cidrs, ipnet)
			continue
		}
		if ip := net.ParseIP(raw); ip != nil {
			h.singles = append(h.singles, ip)
			continue
		}
		log.Warn().Str("cidr", raw).Msg("CIDR de webhook inválido, ignorado")
	}
	return h
}

// Receive procesa una notificación de pago. Responde 200 tanto para eventos
// nuevos como duplicados: la pasarela solo debe reintentar ante fallos reales.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	ip := c.IP()

	if !h.allowedAgent(c.Get(fiber.HeaderUserAgent)) {
		h.log.Warn().Str("ip", ip).Str("user_agent", c.Get(fiber.HeaderUserAgent)).Msg("webhook rechazado por user agent")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "origen no reconocido"})
	}
	if !h.allowedOrigin(ip) {
		h.log.Warn().Str("ip", ip).Msg("webhook rechazado por IP de origen")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "origen no reconocido"})
	}
	if !h.withinRateLimit(c, ip) {
		h.log.Warn().Str("ip", ip).Msg("webhook rechazado por rate limit")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "demasiadas notificaciones"})
	}

	event, err := payment.ParseWebhook(c.Body())
	if err != nil {
		h.log.Warn().Err(err).Str("ip", ip).Msg("webhook con formato desconocido")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "notificación con formato desconocido"})
	}

	if err := h.uc.ProcessWebhook(c.Context(), event); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"status": "success"})
}

// allowedAgent acepta los user agents de MercadoPago. En local también deja
// pasar herramientas de prueba (Postman, curl, Insomnia).
func (h *WebhookHandler) allowedAgent(ua string) bool {
	if strings.Contains(ua, "MercadoPago") || strings.Contains(ua, "Mercado") {
		return true
	}
	if h.local {
		lower := strings.ToLower(ua)
		return strings.Contains(lower, "postman") ||
			strings.Contains(lower, "curl") ||
			strings.Contains(lower, "insomnia")
	}
	return false
}

// allowedOrigin valida la IP de origen contra la lista de rangos permitidos.
// En local no se filtra por IP (túneles y proxies de desarrollo la ocultan).
func (h *WebhookHandler) allowedOrigin(raw string) bool {
	if h.local {
		return true
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}
	for _, ipnet := range h.cidrs {
		if ipnet.Contains(ip) {
			return true
		}
	}
	for _, single := range h.singles {
		if single.Equal(ip) {
			return true
		}
	}
	return false
}

// withinRateLimit limita las notificaciones aceptadas por IP por minuto.
// Si el almacén falla se deja pasar: perder webhooks es peor que un pico.
func (h *WebhookHandler) withinRateLimit(c *fiber.Ctx, ip string) bool {
	key := fmt.Sprintf("webhook_rate_%s_%s", ip, time.Now().Format("200601021504"))
	count, err := h.store.Incr(c.Context(), key, time.Minute)
	if err != nil {
		h.log.Warn().Err(err).Msg("rate limit de webhooks no disponible")
		return true
	}
	return count <= h.limit
}
