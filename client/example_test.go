package client_test

import (
	"context"
	"fmt"
	"time"

	"github.com/rdashevsky/kafwire/client"
	"github.com/rdashevsky/kafwire/logger"
	"github.com/rdashevsky/kafwire/protocol"
)

func ExampleConnect() {
	cfg := client.Config{
		Brokers:     []string{"localhost:9092", "localhost:9093"},
		ClientID:    "my-application",
		DialTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := client.Connect(ctx, cfg, client.Logger(logger.New("info")))
	if err != nil {
		fmt.Printf("Failed to connect: %v", err)
		return
	}
	defer conn.Close()

	md, err := conn.GetMetadata(ctx, "events")
	if err != nil {
		fmt.Printf("Metadata failed: %v", err)
		return
	}

	fmt.Printf("Cluster has %d brokers\n", len(md.Brokers))
}

func ExampleConn_Fetch() {
	ctx := context.Background()

	conn, err := client.Connect(ctx, client.Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		fmt.Printf("Failed to connect: %v", err)
		return
	}
	defer conn.Close()

	if _, err = conn.GetMetadata(ctx, "events"); err != nil {
		fmt.Printf("Metadata failed: %v", err)
		return
	}

	resp, err := conn.Fetch(ctx, &protocol.FetchRequest{
		ReplicaID:   -1,
		MaxWaitTime: 500,
		MinBytes:    1,
		Topics: []protocol.FetchRequestTopic{{
			Topic: "events",
			Partitions: []protocol.FetchRequestPartition{
				{Partition: 0, FetchOffset: 0, MaxBytes: 1 << 20},
			},
		}},
	})
	if err != nil {
		fmt.Printf("Fetch failed: %v", err)
		return
	}

	for _, topic := range resp.Topics {
		for _, p := range topic.Partitions {
			fmt.Printf("%s/%d: %d message-set bytes\n", topic.Topic, p.Partition, len(p.MessageSet))
		}
	}
}

func ExampleParseConfig() {
	cfg, err := client.ParseConfig([]byte(`{
		"brokers": ["broker-1:9092", "broker-2"],
		"client_id": "ingest"
	}`))
	if err != nil {
		fmt.Printf("Parse failed: %v", err)
		return
	}

	fmt.Println(cfg.ClientID)
	// Output: ingest
}
