package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/client/config"
	"github.com/dmitrijs2005/courseimage/internal/client/services"
	"github.com/dmitrijs2005/courseimage/internal/flagx"
)

// Usage:
//
//	client -a 127.0.0.1:50051 -t <token> -course 5 -f cover.png
//	client -a 127.0.0.1:50051 -ping
func main() {

	cfg := config.LoadConfig()

	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	courseID := fs.Int64("course", 0, "course id")
	path := fs.String("f", "", "image file to upload")
	ping := fs.Bool("ping", false, "only check that the server is reachable")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"course", "f", "ping"})); err != nil {
		log.Fatalf("%v", err)
	}

	c, err := api.NewClient(cfg.ServerEndpointAddr, cfg.AccessToken)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer c.Close()

	ctx := context.Background()
	svc := services.NewUploadService(c, cfg.RequestTimeout)

	if *ping {
		if err := svc.Ping(ctx); err != nil {
			log.Fatalf("%v", err)
		}
		log.Println("OK")
		return
	}

	res, err := svc.UploadFile(ctx, *path, *courseID)
	if err != nil {
		log.Fatalf("%v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("%v", err)
	}

}
