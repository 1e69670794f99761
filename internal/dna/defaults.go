package dna

// Neutral returns the template used when both sources miss the team:
// every probability 0.5, every 0-100 score 50, every list empty. Models
// fed two neutral DNAs converge on hold votes, so consensus cannot be
// reached and the fixture resolves to a skip.
func Neutral(teamName string) *TeamDNA {
	return &TeamDNA{
		TeamName:  teamName,
		IsNeutral: true,
		Market: MarketVector{
			WinRate:        0.5,
			ExploitMarkets: []string{},
			AvoidMarkets:   []string{},
		},
		Context: ContextVector{
			HomeStrength:  50,
			AwayStrength:  50,
			Style:         "balanced",
			GoalsTendency: 2.5,
			BTTSTendency:  0.5,
			DrawTendency:  0.25,
			XGFor:         1.3,
			XGAgainst:     1.3,
		},
		Risk: RiskVector{
			PanicFactor:    0.5,
			LeadProtection: 50,
			UnluckyPct:     0.5,
			TierRank:       50,
		},
		Temporal: TemporalVector{
			DieselFactor:      0.5,
			FastStarterFactor: 0.5,
			FirstHalfShare:    0.5,
			SecondHalfShare:   0.5,
		},
		Nemesis: NemesisVector{
			Verticality:          50,
			Patience:             50,
			FastShots:            0.5,
			SlowShots:            0.5,
			TerritorialDominance: 50,
			FrictionVsStyle:      map[string]float64{},
			DefensiveSolidityPct: 50,
			DefensiveBoxPct:      50,
		},
		Psyche: PsycheVector{
			PanicFactor:       0.5,
			KillerInstinct:    0.5,
			LeadProtection:    0.5,
			ComebackMentality: 1.0,
			CollapseRate:      0.5,
			SurrenderRate:     0.5,
			HTDominance:       50,
			Mentality:         MentalityBalanced,
		},
		Sentiment: SentimentVector{
			OverBias:           0.5,
			UnderBias:          0.5,
			BTTSBias:           0.5,
			VulnerabilityScore: 50,
		},
		Roster: RosterVector{
			MVPDependency:       0.5,
			PlaymakerDependency: 0.5,
			Top3Dependency:      50,
			KeeperSaveRate:      0.70,
			KeeperStatus:        KeeperNormal,
		},
		Physical: PhysicalVector{
			PressingIntensity: 50,
			RotationIndex:     50,
			AerialWinPct:      50,
			PossessionPct:     50,
			ProgressivePasses: 50,
			LateResistance:    50,
			LateGameDominance: 50,
		},
		Luck: LuckVector{
			RegressionDirection: RegressionFlat,
		},
		Chameleon: ChameleonVector{
			AdaptabilityIndex: 50,
			ComebackAbility:   0.5,
			TempoFlexibility:  50,
			SetPieceThreat:    50,
			LongRangeThreat:   50,
			ShotAccuracy:      0.5,
			MainFormation:     "4-4-2",
		},
		MicroStrategy: MicroStrategyVector{
			Buckets: map[string]MicroBucket{},
		},
	}
}
