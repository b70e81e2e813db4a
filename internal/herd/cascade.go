package herd

// cascade deletes an animal and everything that depends on it in one pass
// over the transaction's state:
//
//  1. breeding records where it is the dam are removed;
//  2. calf outcomes linking to it are cleared, keeping the record;
//  3. its own offspring list is dropped, and entries mirroring it are
//     removed from other dams' lists;
//  4. its feeder program is removed.
//
// Weak references on other animals (motherId, sireId) are left alone.
func (t *tx) cascade(animalID string) {
	t.removeAnimal(animalID, false)
}

// detachCalf removes a calf animal whose outcome is being rewritten. The
// offspring entry mirroring it stays for the caller to update.
func (t *tx) detachCalf(animalID string) {
	t.removeAnimal(animalID, true)
}

func (t *tx) removeAnimal(animalID string, keepEntry bool) {
	delete(t.state.Animals, animalID)
	t.record(EntityAnimal, ActionDelete, animalID)

	for _, id := range sortedKeys(t.state.BreedingRecords) {
		rec := t.state.BreedingRecords[id]
		if rec.AnimalID == animalID {
			delete(t.state.BreedingRecords, id)
			t.record(EntityBreeding, ActionDelete, id)
		}
	}
	for _, id := range sortedKeys(t.state.BreedingRecords) {
		rec := t.state.BreedingRecords[id]
		if rec.Calf != nil && rec.Calf.AnimalID == animalID {
			rec.Calf = nil
			t.putBreeding(rec, ActionUpdate)
		}
	}

	if list, ok := t.state.OffspringIndex[animalID]; ok {
		for _, o := range list {
			t.record(EntityOffspring, ActionDelete, o.ID)
		}
		delete(t.state.OffspringIndex, animalID)
	}
	if !keepEntry {
		for _, mother := range sortedKeys(t.state.OffspringIndex) {
			if _, err := t.offspring(mother, animalID); err == nil {
				t.dropOffspring(mother, animalID)
				t.record(EntityOffspring, ActionDelete, animalID)
			}
		}
	}

	for _, id := range sortedKeys(t.state.FeederPrograms) {
		if t.state.FeederPrograms[id].AnimalID == animalID {
			delete(t.state.FeederPrograms, id)
			t.record(EntityFeeder, ActionDelete, id)
		}
	}
}
