package domain

// Rebuild returns a message of variant t carrying a copy of env. Variant
// fields are left unset. Text cannot be rebuilt because it requires text,
// so ok is false for MessageTypeText and for unknown tags.
func Rebuild(env *Envelope, t MessageType) (Message, bool) {
	e := *env
	e.MessageType = t
	switch t {
	case MessageTypeImage:
		return &ImageMessage{Envelope: e}, true
	case MessageTypeAudio:
		return &AudioMessage{Envelope: e}, true
	case MessageTypeVideo:
		return &VideoMessage{Envelope: e}, true
	case MessageTypeLocation:
		return &LocationMessage{Envelope: e}, true
	case MessageTypeSticker:
		return &StickerMessage{Envelope: e}, true
	default:
		return nil, false
	}
}
