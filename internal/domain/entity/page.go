package entity

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// MIMEType maps the screenshot format to its media type.
func (s *Screenshot) MIMEType() string {
	switch s.Format {
	case "jpeg", "jpg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

type PageLink struct {
	Text string
	Href string
}
