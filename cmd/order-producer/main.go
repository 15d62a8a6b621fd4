package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

var orderTypes = []orderbookv1.OrderType{
	orderbookv1.OrderTypeExactFull,
	orderbookv1.OrderTypeMinLotIOC,
	orderbookv1.OrderTypePartialGTC,
	orderbookv1.OrderTypeProRata,
	orderbookv1.OrderTypeAuction,
	orderbookv1.OrderTypeOddLot,
}

func generateRandomID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	var result strings.Builder
	for i := 0; i < length; i++ {
		result.WriteByte(charset[rand.Intn(len(charset))])
	}
	return result.String()
}

// generateOrders builds a stream of order requests spread across every order
// type, with prices scattered around basePrice.
func generateOrders(count int, basePrice float64, priceSpread float64) []orderbookv1.PlaceOrderRequest {
	requests := make([]orderbookv1.PlaceOrderRequest, count)

	for i := 0; i < count; i++ {
		orderType := orderTypes[rand.Intn(len(orderTypes))]
		isBid := rand.Float64() < 0.5

		quantity := int64(rand.Intn(100) + 1)

		var price float64
		if isBid {
			price = basePrice - rand.Float64()*priceSpread*0.8
		} else {
			price = basePrice + rand.Float64()*priceSpread*0.8
		}
		if price <= 0 {
			price = basePrice
		}

		req := orderbookv1.PlaceOrderRequest{
			UserID:   generateRandomID(rand.Intn(4) + 6),
			Type:     orderType,
			Bid:      isBid,
			Quantity: quantity,
			Price:    decimal.NewFromFloat(price).Round(1).String(),
		}

		if orderType == orderbookv1.OrderTypeMinLotIOC && quantity > 1 {
			req.MinLot = rand.Int63n(quantity) + 1
		}
		if orderType == orderbookv1.OrderTypeOddLot {
			req.MaxRetries = rand.Intn(5) + 1
		}

		requests[i] = req
	}

	return requests
}

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka topic name")
		file        = flag.String("file", "", "JSON file with order requests (optional, generates orders if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending orders")
		count       = flag.Int("count", 1000, "Number of orders to generate")
		basePrice   = flag.Float64("base-price", 3945.5, "Base price for orders")
		priceSpread = flag.Float64("price-spread", 200.0, "Price spread range")
	)
	flag.Parse()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	var requests []orderbookv1.PlaceOrderRequest
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &requests); err != nil {
			log.Fatalf("Failed to parse JSON from file: %v", err)
		}
		log.Printf("Loaded %d orders from file: %s", len(requests), *file)
	} else {
		log.Printf("Generating %d orders...", *count)
		requests = generateOrders(*count, *basePrice, *priceSpread)
	}

	log.Printf("Sending orders to Kafka broker: %s, topic: %s", *brokers, *topic)

	for i, req := range requests {
		value, err := json.Marshal(req)
		if err != nil {
			log.Printf("Failed to marshal order %d: %v", i+1, err)
			continue
		}

		msg := kafka.Message{
			Key:   []byte(fmt.Sprintf("%s-%d", req.UserID, i)),
			Value: value,
			Time:  time.Now(),
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send order %d (%s): %v", i+1, req.UserID, err)
			continue
		}

		if (i+1)%100 == 0 || i == len(requests)-1 {
			side := "SELL"
			if req.Bid {
				side = "BUY"
			}
			log.Printf("Sent order %d/%d: %s | %s %s | Qty: %d @ %s",
				i+1, len(requests), req.UserID, req.Type, side, req.Quantity, req.Price)
		}

		if i < len(requests)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("Successfully sent all %d orders", len(requests))

	byType := make(map[orderbookv1.OrderType]int)
	buyOrders := 0
	for _, req := range requests {
		byType[req.Type]++
		if req.Bid {
			buyOrders++
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Orders: %d", len(requests))
	log.Printf("Buy Orders: %d", buyOrders)
	log.Printf("Sell Orders: %d", len(requests)-buyOrders)
	for _, t := range orderTypes {
		log.Printf("%s: %d", t, byType[t])
	}
}
