package ws

import "sync"

// Hub fans notification payloads out to the clients subscribed to each
// business topic.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: map[string]map[*Client]struct{}{}}
}

func (h *Hub) Subscribe(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = map[*Client]struct{}{}
	}
	h.topics[topic][client] = struct{}{}
	client.addTopic(topic)
}

func (h *Hub) UnsubscribeAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range client.listTopics() {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
}

// Publish delivers the payload to every subscriber of the topic and reports
// how many clients it reached.
func (h *Hub) Publish(topic string, payload []byte) int {
	h.mu.RLock()
	subs := h.topics[topic]
	h.mu.RUnlock()

	delivered := 0
	for c := range subs {
		c.send(payload)
		delivered++
	}
	return delivered
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
