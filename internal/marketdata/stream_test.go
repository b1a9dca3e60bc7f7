package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func TestKlineFollower_DeliversClosedCandles(t *testing.T) {
	openTime := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/ws/btcusdt@kline_1d") {
			t.Errorf("unexpected stream path %s", r.URL.Path)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// An in-progress kline must be ignored, a closed one delivered.
		open := klineEvent{
			EventType: "kline",
			Symbol:    "BTCUSDT",
			Kline: klinePayload{
				OpenTime: openTime.UnixMilli(),
				Open:     "100", High: "105", Low: "99", Close: "103", Volume: "50",
				Closed: false,
			},
		}
		closed := open
		closed.Kline.Close = "104"
		closed.Kline.Closed = true

		for _, evt := range []klineEvent{open, closed} {
			data, _ := json.Marshal(evt)
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}

		// Keep connection open until client disconnects
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	follower, err := NewKlineFollower(context.Background(), wsURL, "BTCUSDT", nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewKlineFollower: %v", err)
	}
	defer follower.Close()

	select {
	case candle := <-follower.Candles():
		if !candle.Date.Equal(openTime) {
			t.Errorf("expected date %v, got %v", openTime, candle.Date)
		}
		if candle.Close != 104 {
			t.Errorf("expected close 104, got %v", candle.Close)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for closed candle")
	}

	// No further candles should arrive: the open kline was not closed.
	select {
	case c := <-follower.Candles():
		t.Errorf("unexpected extra candle: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestKlinePayload_ToCandle_BadNumber(t *testing.T) {
	k := klinePayload{
		OpenTime: time.Now().UnixMilli(),
		Open:     "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1",
	}
	if _, err := k.toCandle(); err == nil {
		t.Fatal("expected parse error")
	}
}
