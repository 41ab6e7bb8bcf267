// Command mailer consumes mail events from the broker and delivers them.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/logger"
	"github.com/iliyamo/tutoplus/internal/mail"
	"github.com/iliyamo/tutoplus/internal/queue"
)

func main() {
	mcfg := config.LoadMailConfig()
	bcfg := config.LoadBrokerConfig()
	log := logger.New(mcfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender mail.Sender
	if mcfg.SendgridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY not set, messages are only logged")
		sender = mail.NewLogSender(log)
	} else {
		sender = mail.NewSendgridSender(mcfg.SendgridAPIKey, mcfg.AppName, mcfg.FromName, mcfg.FromEmail, log)
	}
	h := mail.Deliverer(sender)

	var err error
	switch bcfg.Kind {
	case config.BrokerRabbitMQ:
		log.Info("consuming", zap.String("broker", bcfg.Kind), zap.String("queue", bcfg.Queue))
		err = queue.ConsumeAMQP(ctx, bcfg.AMQPURL, bcfg.Queue, h, log)
	case config.BrokerKafka:
		log.Info("consuming", zap.String("broker", bcfg.Kind), zap.String("topic", bcfg.KafkaTopic))
		err = queue.ConsumeKafka(ctx, bcfg.KafkaBrokers, bcfg.KafkaTopic, bcfg.KafkaGroupID, h, log)
	default:
		log.Fatal("mailer needs MAIL_BROKER=rabbitmq or kafka", zap.String("got", bcfg.Kind))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", zap.Error(err))
	}
	log.Info("mailer stopped")
}
