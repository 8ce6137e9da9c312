package main

import (
	"eloladder/internal/back"
	"eloladder/internal/bot"
	"eloladder/internal/config"
	"eloladder/internal/web"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func serve(b *back.Back, conf *config.Config) error {
	if conf.DiscordToken == "" {
		return errors.New("no Discord token, set ELOLADDER_DISCORD_TOKEN")
	}

	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	bot, err := bot.New(b, conf)
	if err != nil {
		return err
	}

	services := []service{bot.Serve}
	if conf.WebAddr != "" {
		services = append(services, web.NewServer(b, conf.WebAddr, conf.CommandPrefix).Serve)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	start(&wg, done, services...)

	sig := <-signaled
	log.Printf("info: received signal %d", sig)

	close(done)
	wg.Wait()

	log.Print("info: shutdown complete")

	return nil
}

// service runs until done is closed then calls wg.Done once.
type service func(wg *sync.WaitGroup, done <-chan struct{})

// start runs every service in its own goroutine, they are all accounted for
// in wg before start returns.
func start(wg *sync.WaitGroup, done <-chan struct{}, services ...service) {
	for _, v := range services {
		wg.Add(1)
		go v(wg, done)
	}
}
