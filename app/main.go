package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/list-feed/app/api"
	"github.com/umputun/list-feed/app/proc"
)

type options struct {
	Conf    string        `short:"f" long:"conf" env:"FM_CONF" default:"list-feed.yml" description:"config file (yml or toml)"`
	Port    int           `long:"port" env:"FM_PORT" description:"listen port, overrides config"`
	Timeout time.Duration `long:"timeout" env:"FM_TIMEOUT" default:"30s" description:"twitter api timeout"`
	Limit   float64       `long:"limit" env:"FM_LIMIT" default:"5" description:"max requests per second per client"`

	Args struct {
		Conf string `positional-arg-name:"config"`
	} `positional-args:"yes"`

	Dbg bool `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "local"

func main() {
	fmt.Printf("list-feed %s\n", revision)
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	setupLog(opts.Dbg)

	confFile := opts.Conf
	if opts.Args.Conf != "" {
		confFile = opts.Args.Conf
	}

	conf, err := proc.LoadConf(confFile)
	if err != nil {
		log.Fatalf("[ERROR] can't load config %s, %v", confFile, err)
	}

	port, err := conf.PortNumber()
	if err != nil {
		log.Fatalf("[ERROR] bad port in %s, %v", confFile, err)
	}
	if opts.Port != 0 {
		port = opts.Port
		conf.Port = strconv.Itoa(port)
	}

	twitterClient, err := proc.NewTwitterClient(proc.TwitterOpts{
		ConsumerKey:       conf.ConsumerKey,
		ConsumerSecret:    conf.ConsumerSecret,
		AccessToken:       conf.AccessToken,
		AccessTokenSecret: conf.AccessTokenSecret,
		Timeout:           opts.Timeout,
	})
	if err != nil {
		log.Fatalf("[ERROR] failed to initialize twitter client, %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := api.Server{
		Version: revision,
		Feeds:   &proc.Processor{Conf: *conf, Source: twitterClient},
		Limit:   opts.Limit,
	}
	if err := server.Run(ctx, port); err != nil {
		log.Printf("[ERROR] server failed, %v", err)
		cancel()
		os.Exit(1) // nolint
	}
}

func setupLog(dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.CallerFile, log.Msec, log.LevelBraces)
		return
	}
	log.Setup(log.Msec, log.LevelBraces)
}
