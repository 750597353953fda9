package models

// StationReference is the static part of a station, listed once per response.
type StationReference struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// ReferencesModel References model for related data
type ReferencesModel struct {
	Stations []StationReference `json:"stations"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Stations: []StationReference{},
	}
}

// AddStation appends a station reference once per id.
func (r *ReferencesModel) AddStation(ref StationReference) {
	for _, existing := range r.Stations {
		if existing.ID == ref.ID {
			return
		}
	}
	r.Stations = append(r.Stations, ref)
}
