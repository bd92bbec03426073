package messaging

import (
	"fmt"
	"log"
	"primarycare-identity-service/internal/app/config"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func NewRabbitMQ(driverConfig *config.DriverConfig) *amqp091.Connection {
	connectionString := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		driverConfig.RabbitMQ.Username,
		driverConfig.RabbitMQ.Password,
		driverConfig.RabbitMQ.Host,
		driverConfig.RabbitMQ.Port,
	)
	conn, err := amqp091.DialConfig(connectionString, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Properties: amqp091.Table{
			"connection_name": "primarycare-identity-service",
		},
	})
	if err != nil {
		log.Fatalf("Failed to connect to rabbitMQ: %s", err.Error())
	}
	log.Println("Successfully connected to rabbitMQ")
	return conn
}
