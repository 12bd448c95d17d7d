package models

import (
	"xbrowse/models/constants"
	as "xbrowse/models/constants/affected-status"
)

type Individual struct {
	Id             string                   `json:"indivId" yaml:"indivId"`
	AffectedStatus constants.AffectedStatus `json:"affected" yaml:"affected"`
	Sex            constants.Sex            `json:"sex" yaml:"sex"`
	MaternalId     string                   `json:"maternalId,omitempty" yaml:"maternalId,omitempty"`
	PaternalId     string                   `json:"paternalId,omitempty" yaml:"paternalId,omitempty"`
}

type Family struct {
	ProjectId   string       `json:"projectId" yaml:"projectId"`
	FamilyId    string       `json:"familyId" yaml:"familyId"`
	Individuals []Individual `json:"individuals" yaml:"individuals"`
}

type Cohort struct {
	ProjectId string   `json:"projectId" yaml:"projectId"`
	CohortId  string   `json:"cohortId" yaml:"cohortId"`
	IndivIds  []string `json:"indivIds" yaml:"indivIds"`
}

func (f *Family) IndivIds() []string {
	ids := make([]string, 0, len(f.Individuals))
	for _, indiv := range f.Individuals {
		ids = append(ids, indiv.Id)
	}
	return ids
}

func (f *Family) AffectedStatusMap() map[string]constants.AffectedStatus {
	statuses := make(map[string]constants.AffectedStatus, len(f.Individuals))
	for _, indiv := range f.Individuals {
		status := indiv.AffectedStatus
		if status == "" {
			status = as.Unknown
		}
		statuses[indiv.Id] = status
	}
	return statuses
}

func (f *Family) IndivIdsWithStatus(status constants.AffectedStatus) []string {
	var ids []string
	for _, indiv := range f.Individuals {
		if indiv.AffectedStatus == status {
			ids = append(ids, indiv.Id)
		}
	}
	return ids
}
