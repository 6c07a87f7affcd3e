package gateway

import "encoding/json"

// chatText and chatTranslate build the small chat-component JSON shapes the
// handshake state machine needs (disconnect reasons, the status MOTD). A
// dedicated chat-component package would be overkill for the three shapes
// this proxy ever emits.
func chatText(s string) string {
	b, _ := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: s})
	return string(b)
}

func chatTextColor(s, color string) string {
	b, _ := json.Marshal(struct {
		Text  string `json:"text"`
		Color string `json:"color"`
	}{Text: s, Color: color})
	return string(b)
}

func chatTranslate(key string) string {
	b, _ := json.Marshal(struct {
		Translate string `json:"translate"`
	}{Translate: key})
	return string(b)
}
