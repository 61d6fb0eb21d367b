package sqlinline

const QClaimPurchaseRedemption = `--sql 649c6d40-13dc-43d5-90aa-49db7a236bc9
insert into purchase_redemptions (transaction_id, user_id, product_id, credits, redeemed_at)
values ($1::text, $2::text, $3::text, $4::int, now())
on conflict (transaction_id) do nothing;
`

const QReleasePurchaseRedemption = `--sql ef0eeb09-945b-4f6e-8a71-22d276e338b2
delete from purchase_redemptions
where transaction_id = $1::text
  and user_id = $2::text;
`
