package main

import (
	"os"
	"os/signal"
	"syscall"

	"kiliheights.com/configs/configsdatabase"
	"kiliheights.com/configs/configslog"
	"kiliheights.com/configs/configsredis"
	"kiliheights.com/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	configslog.InitLogger()
	defer configslog.SyncLogger()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	configsredis.InitRedis()
	defer configsredis.CloseRedis()

	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: errorHandler,
	})

	routes.SetupRoutes(app)

	addr := ":" + getEnv("APP_PORT", "3000")
	go func() {
		if err := app.Listen(addr); err != nil {
			configslog.Log.Fatal("Server stopped", zap.Error(err))
		}
	}()
	configslog.SLog.Infof("Listening on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	configslog.SLog.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		configslog.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// errorHandler turns unhandled fiber errors into the right shape for the
// caller: JSON for API clients, the error page for browsers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	if code == fiber.StatusInternalServerError {
		configslog.Log.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	}
	if c.Accepts("application/json", "text/html") == "application/json" {
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
	if code == fiber.StatusNotFound {
		return c.Status(code).Render("errors/404", fiber.Map{"Title": "Page Not Found"}, "layouts/public_layout")
	}
	return c.Status(code).Render("errors/500", fiber.Map{"Title": "Something Went Wrong"}, "layouts/public_layout")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
