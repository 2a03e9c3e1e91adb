// watch_events prints ledger events, either from the server's websocket
// stream or straight from the Redis relay channel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"sealed_rps/internal/domain"
	"sealed_rps/internal/events"
	"sealed_rps/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", "ws://127.0.0.1:"+envOr("APP_PORT", "8080")+"/ws", "event stream URL")
	token := flag.String("token", "", "session token; follows the wallet's games")
	games := flag.String("games", "", "comma separated game ids to watch")
	all := flag.Bool("all", false, "stream every event")
	fromRedis := flag.Bool("redis", false, "read the Redis relay channel instead of the websocket")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *fromRedis {
		followRedis(ctx)
		return
	}

	u, err := url.Parse(*server)
	if err != nil {
		log.Fatalf("bad -server: %v", err)
	}
	q := u.Query()
	if *token != "" {
		q.Set("token", *token)
	}
	if *all {
		q.Set("all", "true")
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	for _, raw := range strings.Split(*games, ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Fatalf("bad game id %q", raw)
		}
		if err := conn.WriteJSON(ws.Inbound{Type: ws.MsgSubscribe, GameID: id}); err != nil {
			log.Fatalf("subscribe: %v", err)
		}
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg ws.Outbound
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				log.Printf("read: %v", err)
			}
			return
		}
		switch {
		case msg.Event != nil:
			printEvent(*msg.Event)
		case msg.Type == ws.MsgError:
			log.Printf("server error: %s", msg.Message)
		default:
			log.Printf("%s %d", msg.Type, msg.GameID)
		}
	}
}

func followRedis(ctx context.Context) {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	client, err := events.NewRedisClient(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), db)
	if err != nil || client == nil {
		log.Fatalf("redis: REDIS_ADDR not set or unreachable (%v)", err)
	}
	defer client.Close()

	relay := events.NewRedisRelay(client, envOr("EVENTS_CHANNEL", "sealed_rps:events"))
	if err := relay.Follow(ctx, func(_ context.Context, ev domain.Event) { printEvent(ev) }); err != nil {
		log.Fatalf("follow: %v", err)
	}
}

func printEvent(ev domain.Event) {
	b, _ := json.Marshal(ev)
	fmt.Println(string(b))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
