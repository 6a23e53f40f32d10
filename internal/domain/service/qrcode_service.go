package service

// QRCodeService renders QR images for short links.
type QRCodeService interface {
	// GenerateLinkQR returns a PNG QR code encoding the short URL.
	GenerateLinkQR(shortURL string) ([]byte, error)
}
