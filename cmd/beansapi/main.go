package main

import (
	"log"
	"net/http"
	"os"

	"github.com/iov-one/magicbeans/cmd/beansapi/client"
	"github.com/iov-one/magicbeans/cmd/beansapi/handlers"
	"github.com/iov-one/magicbeans/cmd/beansapi/util"
	"github.com/pkg/errors"
)

type configuration struct {
	HTTP       string
	Tendermint string
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LUTC | log.Lshortfile)
	log.SetPrefix(cutstr(util.BuildHash, 6) + " ")

	conf := configuration{
		HTTP:       env("HTTP", ":8000"),
		Tendermint: env("TENDERMINT", "http://localhost:26657"),
	}

	if err := run(conf); err != nil {
		log.Fatal(err)
	}
}

func cutstr(s string, maxchar int) string {
	if len(s) <= maxchar {
		return s
	}
	return s[:maxchar]
}

func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func run(conf configuration) error {
	tm := client.NewHTTPTendermintClient(conf.Tendermint)

	rt := http.NewServeMux()
	rt.Handle("/info", &handlers.InfoHandler{})
	rt.Handle("/blocks/", &handlers.BlocksHandler{Tm: tm})
	rt.Handle("/positions", &handlers.PositionsHandler{Tm: tm})
	rt.Handle("/positions/", &handlers.PositionDetailHandler{Tm: tm})
	rt.Handle("/pool", &handlers.PoolHandler{Tm: tm})
	rt.Handle("/configuration", &handlers.ConfigurationHandler{Tm: tm})
	rt.Handle("/", &handlers.DefaultHandler{})

	log.Printf("listening on %s, tendermint %s", conf.HTTP, conf.Tendermint)
	if err := http.ListenAndServe(conf.HTTP, rt); err != nil {
		return errors.Wrap(err, "http server")
	}
	return nil
}
