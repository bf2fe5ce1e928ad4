package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx := context.Background()

	configPath := pflag.StringP("config", "c", os.Getenv("PDF_SERVER_CONFIG"), "YAML config file")
	pflag.Parse()

	cfg, err := LoadConfig(*configPath, os.LookupEnv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	app, err := NewApp(cfg, &SimpleLogger{prefix: "pdfserver"})
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}
	defer app.Close()

	srv, err := buildServer(app)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Printf("Starting server on http://%s (%s adapter)", addr, cfg.Server.Adapter)
		log.Printf("PDF API: http://%s%s", addr, app.BasePath())
		if err := srv.Serve(addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// SimpleLogger is a basic logger implementation.
type SimpleLogger struct {
	prefix string
}

func (l *SimpleLogger) Debugf(format string, args ...any) {
	fmt.Printf("[DEBUG] %s: %s\n", l.prefix, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Infof(format string, args ...any) {
	fmt.Printf("[INFO] %s: %s\n", l.prefix, fmt.Sprintf(format, args...))
}

func (l *SimpleLogger) Errorf(format string, args ...any) {
	fmt.Printf("[ERROR] %s: %s\n", l.prefix, fmt.Sprintf(format, args...))
}
