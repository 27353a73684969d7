package routes

import (
	"nutriflow/authentication/controllers"
	"nutriflow/handlers"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires the page, the form API and, when the self-hosted
// provider is in use, the email verification link.
func SetupRoutes(app *fiber.App, forms *handlers.FormHandler, verify *controllers.VerifyController) {
	app.Get("/", forms.Index)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api")
	api.Get("/diets", forms.Diets)
	api.Get("/forms/:id", forms.GetForm)
	api.Delete("/forms/:id", forms.Discard)
	api.Put("/forms/:id/fields/:field", forms.SetField)
	api.Post("/forms/:id/register", forms.Register)
	api.Post("/forms/:id/reset", forms.Reset)
	api.Get("/forms/:id/events", forms.Events)

	if verify != nil {
		app.Get("/auth/verify", verify.Verify)
	}
}
