package config

// DefaultRetailers returns the built-in UK retailer set, used when the
// config file does not declare its own. Order is significant: it is the
// registry order used for deterministic tie-breaking downstream.
func DefaultRetailers() []RetailerConfig {
	return []RetailerConfig{
		{ID: "amazon.co.uk", DisplayName: "Amazon UK", SiteFilter: "site:amazon.co.uk"},
		{ID: "argos.co.uk", DisplayName: "Argos", SiteFilter: "site:argos.co.uk"},
		{ID: "currys.co.uk", DisplayName: "Currys", SiteFilter: "site:currys.co.uk"},
		{ID: "johnlewis.com", DisplayName: "John Lewis", SiteFilter: "site:johnlewis.com"},
		{ID: "asos.com", DisplayName: "ASOS", SiteFilter: "site:asos.com"},
		{ID: "next.co.uk", DisplayName: "Next", SiteFilter: "site:next.co.uk"},
		{ID: "boots.com", DisplayName: "Boots", SiteFilter: "site:boots.com"},
		{ID: "superdrug.com", DisplayName: "Superdrug", SiteFilter: "site:superdrug.com"},
		{ID: "tesco.com", DisplayName: "Tesco", SiteFilter: "site:tesco.com"},
		{ID: "sainsburys.co.uk", DisplayName: "Sainsbury's", SiteFilter: "site:sainsburys.co.uk"},
		{ID: "asda.com", DisplayName: "Asda", SiteFilter: "site:asda.com"},
		{ID: "morrisons.com", DisplayName: "Morrisons", SiteFilter: "site:morrisons.com"},
		{ID: "wickes.co.uk", DisplayName: "Wickes", SiteFilter: "site:wickes.co.uk"},
		{ID: "b-and-q.co.uk", DisplayName: "B&Q", SiteFilter: "site:b-and-q.co.uk"},
		{ID: "screwfix.com", DisplayName: "Screwfix", SiteFilter: "site:screwfix.com"},
		{ID: "halfords.com", DisplayName: "Halfords", SiteFilter: "site:halfords.com"},
		{ID: "dunelm.com", DisplayName: "Dunelm", SiteFilter: "site:dunelm.com"},
		{ID: "ikea.com/gb", DisplayName: "IKEA UK", SiteFilter: "site:ikea.com/gb"},
		{ID: "selfridges.com", DisplayName: "Selfridges", SiteFilter: "site:selfridges.com"},
		{ID: "houseoffraser.co.uk", DisplayName: "House of Fraser", SiteFilter: "site:houseoffraser.co.uk"},
		{ID: "jd.com", DisplayName: "JD Sports", SiteFilter: "site:jd.com"},
		{ID: "footpatrol.com", DisplayName: "Footpatrol", SiteFilter: "site:footpatrol.com"},
		{ID: "size.co.uk", DisplayName: "size?", SiteFilter: "site:size.co.uk"},
		{ID: "catchonline.com", DisplayName: "Catch", SiteFilter: "site:catchonline.com"},
		{ID: "very.co.uk", DisplayName: "Very", SiteFilter: "site:very.co.uk"},
		{ID: "simply-be.co.uk", DisplayName: "Simply Be", SiteFilter: "site:simply-be.co.uk"},
		{ID: "scan.co.uk", DisplayName: "Scan", SiteFilter: "site:scan.co.uk"},
		{ID: "overclockers.co.uk", DisplayName: "Overclockers UK", SiteFilter: "site:overclockers.co.uk"},
		{ID: "ebuyer.com", DisplayName: "Ebuyer", SiteFilter: "site:ebuyer.com"},
	}
}
