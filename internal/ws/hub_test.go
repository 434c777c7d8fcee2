package ws

import "testing"

func TestHubPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a := NewClient(nil)
	b := NewClient(nil)

	topic := NotificationChannel("biz-1")
	hub.Subscribe(topic, a)
	hub.Subscribe(topic, b)
	hub.Subscribe(NotificationChannel("biz-2"), b)

	if got := hub.Publish(topic, []byte("hello")); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}
	if got := <-a.out; string(got) != "hello" {
		t.Fatalf("client a got %q", got)
	}
	if got := <-b.out; string(got) != "hello" {
		t.Fatalf("client b got %q", got)
	}

	if got := hub.Publish(NotificationChannel("biz-3"), []byte("x")); got != 0 {
		t.Fatalf("publish to empty topic delivered %d", got)
	}
}

func TestHubUnsubscribeAll(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil)

	hub.Subscribe(NotificationChannel("biz-1"), c)
	hub.Subscribe(NotificationChannel("biz-2"), c)
	if hub.SubscriberCount(NotificationChannel("biz-1")) != 1 {
		t.Fatalf("expected one subscriber")
	}

	hub.UnsubscribeAll(c)
	if hub.SubscriberCount(NotificationChannel("biz-1")) != 0 || hub.SubscriberCount(NotificationChannel("biz-2")) != 0 {
		t.Fatalf("expected all topics cleared")
	}
}

func TestNotificationChannelShape(t *testing.T) {
	if got := NotificationChannel("biz-1"); got != "business:notifications:biz-1" {
		t.Fatalf("unexpected channel %q", got)
	}
}
