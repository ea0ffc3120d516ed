package plan

import (
	"github.com/gofiber/fiber/v2"

	"backend-raceplanner/internal/auth"
	"backend-raceplanner/internal/shared/apperr"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/plan", authMiddleware, func(c *fiber.Ctx) error {
		var req Request
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.Locale == "" {
			req.Locale = c.Get(fiber.HeaderAcceptLanguage)
		}
		opts, err := NewOptions(req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), apperr.Message(err))
		}

		p, err := svc.BuildPlan(c.UserContext(), auth.UserID(c), opts)
		if err != nil {
			if apperr.IsRetryable(err) {
				c.Set(fiber.HeaderRetryAfter, "5")
			}
			return fiber.NewError(apperr.HTTPStatus(err), apperr.Message(err))
		}
		return c.JSON(p)
	})
}
