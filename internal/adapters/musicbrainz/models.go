package musicbrainz

// searchResponse is the /artist search payload (fmt=json).
type searchResponse struct {
	Count   int        `json:"count"`
	Artists []mbArtist `json:"artists"`
}

type mbArea struct {
	Name string `json:"name"`
}

type mbArtist struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	Country   string  `json:"country"`
	Area      *mbArea `json:"area"`
	BeginArea *mbArea `json:"begin-area"`
}

// originLabel picks the most specific geographic hint: the country code,
// then the area, then where the artist began.
func (a mbArtist) originLabel() string {
	if a.Country != "" {
		return a.Country
	}
	if a.Area != nil && a.Area.Name != "" {
		return a.Area.Name
	}
	if a.BeginArea != nil && a.BeginArea.Name != "" {
		return a.BeginArea.Name
	}
	return ""
}
