package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segurplan-dev/roster-manager/backend/internal/config"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
	"github.com/segurplan-dev/roster-manager/backend/internal/repository"
	"github.com/segurplan-dev/roster-manager/backend/internal/roster"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * Crear el logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * Cargar la configuración
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * Conectar con la base de datos
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", slog.String("error", err.Error()))
		return
	}
	defer dbpool.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancelPing()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("no se pudo conectar con la base de datos", slog.String("error", err.Error()))
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * Conectar con RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar con RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		roster.EventQueue, // nombre de la cola
		true,              // duradera
		false,             // sin autoborrado al quedarse sin consumidores
		false,             // no exclusiva
		false,             // esperar la confirmación de RabbitMQ
		nil,               // sin argumentos extra
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", slog.String("error", err.Error()))
		return
	}

	// Escuchar CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	/**********************************************
	 * Consumir los eventos del cuadrante
	 **********************************************/
	msgs, err := ch.Consume(
		q.Name, // cola
		"",     // identificador de consumidor asignado por RabbitMQ
		false,  // sin auto-ack: se confirma tras registrar la auditoría
		false,  // no exclusiva
		false,  // no-local no soportado por RabbitMQ
		false,  // esperar la respuesta de RabbitMQ
		nil,    // sin argumentos extra
	)
	if err != nil {
		logger.Error("no se pudieron consumir los mensajes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				event := domain.RosterEvent{}
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					logger.Error("no se pudo deserializar el evento", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				entry := &domain.AuditEntry{
					EventID:    event.ID,
					Operation:  event.Operation,
					PostID:     event.PostID,
					SlotNumber: event.SlotNumber,
					Date:       event.Date,
					Actor:      event.Actor,
					Payload:    msg.Body,
				}
				if err := repo.InsertAuditEntry(entry); err != nil {
					logger.Error("no se pudo registrar la auditoría", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // reencolar para reintentar
					continue
				}

				logger.Info("evento registrado",
					slog.String("id", event.ID.String()),
					slog.String("operation", string(event.Operation)),
					slog.Int("cells", event.CellsAffected),
				)
				_ = msg.Ack(false)
			}
		}
	}()

	<-sigChan
	logger.Info("apagando el worker de eventos...")
	cancel()
	wg.Wait()
	logger.Info("worker de eventos apagado correctamente")
}
